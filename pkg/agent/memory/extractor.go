package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/types"
)

// maxExcerptTokens bounds the transcript excerpt sent to the extraction model.
const maxExcerptTokens = 2000

// Extractor turns the user-authored side of one exchange into zero or more
// short factual statements via a model call.
//
// The extractor fails closed: a transport failure or a reply that cannot be
// parsed as a JSON array of strings yields an empty fact list, never an error
// to the caller. One malformed extraction must not abort the session.
type Extractor struct {
	provider llm.Provider
	tok      *tokenizer.Tokenizer
	maxFacts int
	log      *logging.Logger
}

// NewExtractor creates an extractor on the given provider. maxFacts caps how
// many facts one exchange may contribute; values below one fall back to the
// default of three.
func NewExtractor(provider llm.Provider, tok *tokenizer.Tokenizer, maxFacts int, log *logging.Logger) *Extractor {
	if maxFacts < 1 {
		maxFacts = 3
	}
	return &Extractor{
		provider: provider,
		tok:      tok,
		maxFacts: maxFacts,
		log:      log,
	}
}

// Extract returns the durable facts found in the latest user-authored
// message text. Assistant and system content must not be passed in; the
// caller supplies user content only.
func (e *Extractor) Extract(ctx context.Context, userText string) []string {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil
	}
	if e.tok != nil {
		userText = e.tok.Truncate(userText, maxExcerptTokens)
	}

	reply, err := e.provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(fmt.Sprintf(extractionSystemPrompt, e.maxFacts)),
		types.NewUserMessage(buildExtractionPrompt(userText)),
	})
	if err != nil {
		if e.log != nil {
			e.log.Warnf("fact extraction call failed, skipping: %v", err)
		}
		return nil
	}

	facts, err := parseFactList(reply.Content)
	if err != nil {
		if e.log != nil {
			e.log.Warnf("fact extraction reply unparseable, skipping: %v", err)
		}
		return nil
	}

	if len(facts) > e.maxFacts {
		facts = facts[:e.maxFacts]
	}
	return facts
}

// parseFactList parses a model reply as a JSON array of strings. A fenced
// code block around the array is tolerated; anything else is a parse failure.
func parseFactList(raw string) ([]string, error) {
	raw = stripCodeFence(strings.TrimSpace(raw))

	var entries []string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("memory: fact list is not a JSON array of strings: %w", err)
	}

	facts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if fact := strings.TrimSpace(entry); fact != "" {
			facts = append(facts, fact)
		}
	}
	return facts, nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
