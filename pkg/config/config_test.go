package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("llm", map[string]interface{}{
		"model":    "gpt-4o-mini",
		"base_url": "http://localhost:8080/v1",
	}))
	require.NoError(t, store.Save())

	// A fresh store must see the persisted data.
	reloaded, err := NewFileStore(path)
	require.NoError(t, err)

	data, err := reloaded.GetSection("llm")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", data["model"])
	assert.Equal(t, "http://localhost:8080/v1", data["base_url"])
}

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	data, err := store.GetSection("llm")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path)
	require.Error(t, err)
}

func TestManagerRegisterAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetSection(SectionIDLLM, map[string]interface{}{
		"model":               "gpt-4o",
		"summarization_model": "gpt-4o-mini",
	}))
	require.NoError(t, store.Save())

	manager := NewManager(store)
	llm := NewLLMSection()
	require.NoError(t, manager.RegisterSection(llm))

	require.Error(t, manager.RegisterSection(NewLLMSection()), "duplicate registration must fail")

	require.NoError(t, manager.LoadAll())
	assert.Equal(t, "gpt-4o", llm.GetModel())
	assert.Equal(t, "gpt-4o-mini", llm.GetSummarizationModel())
	assert.Equal(t, "", llm.GetExtractionModel(), "unset override stays empty; callers fall back to the main model")
}

func TestManagerSaveAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	manager := NewManager(store)
	mem := NewMemorySection()
	require.NoError(t, manager.RegisterSection(mem))

	require.NoError(t, mem.SetData(map[string]interface{}{
		"dir":       "/tmp/memories",
		"max_facts": float64(5),
		"disabled":  false,
	}))
	require.NoError(t, manager.SaveAll())

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	data, err := reloaded.GetSection(SectionIDMemory)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/memories", data["dir"])
}

func TestMemorySectionDefaults(t *testing.T) {
	mem := NewMemorySection()
	assert.Equal(t, DefaultMaxFacts, mem.GetMaxFacts())
	assert.False(t, mem.IsDisabled())

	// Non-positive values never disable the cap.
	require.NoError(t, mem.SetData(map[string]interface{}{"max_facts": float64(-1)}))
	assert.Equal(t, DefaultMaxFacts, mem.GetMaxFacts())
}

func TestInitializeAndGlobalAccessors(t *testing.T) {
	t.Cleanup(reset)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))

	require.True(t, IsInitialized())
	require.NotNil(t, GetLLM())
	require.NotNil(t, GetMemory())

	sections := Global().GetSections()
	require.Len(t, sections, 2)
	assert.Equal(t, SectionIDLLM, sections[0].ID())
	assert.Equal(t, SectionIDMemory, sections[1].ID())
}
