package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizerFoldsFacts(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"Likes cricket and owns a dog named Rex.",
	}}
	summarizer := NewSummarizer(provider, nil, nil)

	summary, err := summarizer.Summarize(context.Background(), "Likes cricket.", []string{"Has a dog named Rex"})
	require.NoError(t, err)
	assert.Equal(t, "Likes cricket and owns a dog named Rex.", summary)

	prompt := provider.lastUserPrompt()
	assert.Contains(t, prompt, "Likes cricket.")
	assert.Contains(t, prompt, "- Has a dog named Rex")
}

func TestSummarizerEmptyPriorSummary(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Likes cricket."}}
	summarizer := NewSummarizer(provider, nil, nil)

	summary, err := summarizer.Summarize(context.Background(), "", []string{"User likes cricket"})
	require.NoError(t, err)
	assert.Equal(t, "Likes cricket.", summary)
	assert.Contains(t, provider.lastUserPrompt(), "(empty)")
}

func TestSummarizerNoFactsNoCall(t *testing.T) {
	provider := &scriptedProvider{}
	summarizer := NewSummarizer(provider, nil, nil)

	summary, err := summarizer.Summarize(context.Background(), "Prior.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Prior.", summary)
	assert.Empty(t, provider.requests)
}

func TestSummarizerTransportFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("endpoint unreachable")}
	summarizer := NewSummarizer(provider, nil, nil)

	_, err := summarizer.Summarize(context.Background(), "Prior.", []string{"fact"})
	require.Error(t, err)
}

func TestSummarizerEmptyReplyKeepsPrior(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"   "}}
	summarizer := NewSummarizer(provider, nil, nil)

	summary, err := summarizer.Summarize(context.Background(), "Prior.", []string{"fact"})
	require.NoError(t, err)
	assert.Equal(t, "Prior.", summary)
}
