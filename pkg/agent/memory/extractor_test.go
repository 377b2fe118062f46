package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorParsesFactList(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`["User likes cricket", "Has a dog named Rex"]`,
	}}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "I love cricket! Also my dog Rex says hi.")
	assert.Equal(t, []string{"User likes cricket", "Has a dog named Rex"}, facts)
	assert.Contains(t, provider.lastUserPrompt(), "my dog Rex")
}

func TestExtractorEmptyUserText(t *testing.T) {
	provider := &scriptedProvider{}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "   \n ")
	assert.Empty(t, facts)
	assert.Empty(t, provider.requests, "no model call for empty input")
}

func TestExtractorFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose", "I couldn't find any facts, sorry!"},
		{"object", `{"facts": ["x"]}`},
		{"number array", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{replies: []string{tt.reply}}
			extractor := NewExtractor(provider, nil, 3, nil)

			facts := extractor.Extract(context.Background(), "tell me a joke")
			assert.Empty(t, facts, "malformed extraction must yield no facts, not an error")
		})
	}
}

func TestExtractorTransportFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "I love cricket")
	assert.Empty(t, facts)
}

func TestExtractorCapsFactCount(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`["a", "b", "c", "d", "e"]`,
	}}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "so many facts")
	assert.Equal(t, []string{"a", "b", "c"}, facts)
}

func TestExtractorToleratesCodeFence(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"```json\n[\"User likes cricket\"]\n```",
	}}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "I love cricket")
	assert.Equal(t, []string{"User likes cricket"}, facts)
}

func TestExtractorDropsBlankEntries(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`["User likes cricket", "", "   "]`,
	}}
	extractor := NewExtractor(provider, nil, 3, nil)

	facts := extractor.Extract(context.Background(), "I love cricket")
	require.Equal(t, []string{"User likes cricket"}, facts)
}
