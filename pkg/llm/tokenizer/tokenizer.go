// Package tokenizer provides token counting for prompt budgeting.
//
// Counts are computed with the cl100k_base encoding, which is close enough
// across the OpenAI-compatible model families this project targets; the
// counts are used for budgeting prompt excerpts, not billing.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Tokenizer counts tokens in text using a fixed tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer with the cl100k_base encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the number of tokens in the given text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate returns text cut down to at most maxTokens tokens. Text within
// the budget is returned unchanged. Truncation keeps the head of the text
// and appends a marker so downstream prompts can tell content was elided.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	truncated := t.encoding.Decode(tokens[:maxTokens])
	return strings.TrimRight(truncated, " ") + "\n[truncated]"
}
