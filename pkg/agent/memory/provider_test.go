package memory

import (
	"context"
	"fmt"

	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/types"
)

// scriptedProvider replays canned replies in order, one per Complete call,
// and records the requests it saw.
type scriptedProvider struct {
	replies  []string
	err      error
	model    string
	requests [][]*types.Message
}

func (p *scriptedProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	p.requests = append(p.requests, messages)
	if len(p.requests) > len(p.replies) {
		return nil, fmt.Errorf("scriptedProvider: no reply scripted for call %d", len(p.requests))
	}
	return types.NewAssistantMessage(p.replies[len(p.requests)-1]), nil
}

func (p *scriptedProvider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	msg, err := p.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	chunks := make(chan *llm.StreamChunk, 2)
	chunks <- &llm.StreamChunk{Role: string(msg.Role), Content: msg.Content}
	chunks <- &llm.StreamChunk{Finished: true}
	close(chunks)
	return chunks, nil
}

func (p *scriptedProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "scripted", Name: p.GetModel()}
}

func (p *scriptedProvider) GetModel() string {
	if p.model == "" {
		return "scripted-model"
	}
	return p.model
}

func (p *scriptedProvider) GetBaseURL() string { return "" }
func (p *scriptedProvider) GetAPIKey() string  { return "" }

// lastUserPrompt returns the user-side content of the most recent request.
func (p *scriptedProvider) lastUserPrompt() string {
	if len(p.requests) == 0 {
		return ""
	}
	msgs := p.requests[len(p.requests)-1]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() {
			return msgs[i].Content
		}
	}
	return ""
}
