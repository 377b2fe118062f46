package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entrhq/recall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer returns a test server that writes the given raw SSE lines
// followed by the terminal sentinel.
func sseServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprint(w, "data: [DONE]\n")
	}))
}

func deltaFrame(role, content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"role":%q,"content":%q}}]}`, role, content)
}

func TestStreamCompletionAccumulatesDeltas(t *testing.T) {
	server := sseServer(t,
		deltaFrame("assistant", "Hel"),
		deltaFrame("", "lo"),
		deltaFrame("", " world"),
	)
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	stream, err := provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("hi"),
	})
	require.NoError(t, err)

	var content string
	var role string
	finished := false
	for chunk := range stream {
		require.NoError(t, chunk.Error)
		if chunk.Role != "" {
			role = chunk.Role
		}
		if chunk.Finished {
			finished = true
		}
		content += chunk.Content
	}

	assert.Equal(t, "Hello world", content)
	assert.Equal(t, "assistant", role)
	assert.True(t, finished, "expected a Finished chunk after [DONE]")
}

func TestStreamCompletionSkipsMalformedAndControlFrames(t *testing.T) {
	server := sseServer(t,
		": sse comment, must be ignored",
		"event: ping",
		deltaFrame("assistant", "a"),
		"data: {this is not json",
		`data: {"choices":[]}`,
		deltaFrame("", "b"),
	)
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	msg, err := provider.Complete(context.Background(), []*types.Message{
		types.NewUserMessage("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", msg.Content)
	assert.Equal(t, types.RoleAssistant, msg.Role)
}

func TestStreamCompletionNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = provider.StreamCompletion(context.Background(), []*types.Message{
		types.NewUserMessage("hi"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCompleteFinishReasonStop(t *testing.T) {
	server := sseServer(t,
		deltaFrame("assistant", "done"),
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
	)
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	msg, err := provider.Complete(context.Background(), []*types.Message{
		types.NewUserMessage("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "done", msg.Content)
}

func TestCloneWithModel(t *testing.T) {
	provider, err := NewProvider("test-key", WithModel("gpt-4o"), WithBaseURL("http://localhost:1"))
	require.NoError(t, err)

	clone := provider.CloneWithModel("gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", clone.GetModel())
	assert.Equal(t, "gpt-4o", provider.GetModel())
	assert.Equal(t, provider.GetBaseURL(), clone.GetBaseURL())
	assert.Equal(t, provider.GetAPIKey(), clone.GetAPIKey())
}

func TestNewProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewProvider("")
	require.Error(t, err)
}
