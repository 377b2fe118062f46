package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/types"
)

// maxSummaryTokens bounds the prior-summary excerpt sent to the model.
const maxSummaryTokens = 1500

// Summarizer incrementally folds newly committed facts into the running
// summary. It runs only after the reconciliation batch has been applied and
// checkpointed, so the summary always reflects post-reconciliation state.
type Summarizer struct {
	provider llm.Provider
	tok      *tokenizer.Tokenizer
	log      *logging.Logger
}

// NewSummarizer creates a summarizer on the given provider.
func NewSummarizer(provider llm.Provider, tok *tokenizer.Tokenizer, log *logging.Logger) *Summarizer {
	return &Summarizer{provider: provider, tok: tok, log: log}
}

// Summarize returns the replacement summary for the prior summary plus the
// facts committed in the current batch. A transport failure is returned as an
// error; the caller keeps the prior summary in that case.
func (s *Summarizer) Summarize(ctx context.Context, previousSummary string, facts []string) (string, error) {
	if len(facts) == 0 {
		return previousSummary, nil
	}
	if s.tok != nil {
		previousSummary = s.tok.Truncate(previousSummary, maxSummaryTokens)
	}

	reply, err := s.provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(summarizationSystemPrompt),
		types.NewUserMessage(buildSummarizationPrompt(previousSummary, facts)),
	})
	if err != nil {
		return "", fmt.Errorf("memory: summarization call failed: %w", err)
	}

	summary := strings.TrimSpace(reply.Content)
	if summary == "" {
		// An empty reply never wipes the running summary.
		return previousSummary, nil
	}
	return summary, nil
}
