package memory

import (
	"context"
	"fmt"

	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/types"
)

// Reconciler decides, per newly extracted fact, whether to add, update,
// delete, or leave the record set alone, via a model call whose reply is
// strictly validated before anything is applied.
type Reconciler struct {
	provider llm.Provider
	log      *logging.Logger
}

// NewReconciler creates a reconciler on the given provider.
func NewReconciler(provider llm.Provider, log *logging.Logger) *Reconciler {
	return &Reconciler{provider: provider, log: log}
}

// Reconcile serializes the record snapshot and the new facts into a decision
// request and returns the validated decision batch.
//
// A reply that does not parse as a strict decision array discards the whole
// batch (the exchange contributes no memory change); a decision referencing
// an id outside the snapshot is dropped individually. Both conditions are
// logged, neither is an error the caller must handle beyond skipping.
func (r *Reconciler) Reconcile(ctx context.Context, snapshot []Snapshot, facts []string) ([]Decision, error) {
	if len(facts) == 0 {
		return nil, nil
	}

	prompt, err := buildReconciliationPrompt(snapshot, facts)
	if err != nil {
		return nil, err
	}

	reply, err := r.provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(reconciliationSystemPrompt),
		types.NewUserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("memory: reconciliation call failed: %w", err)
	}

	decisions, err := ParseDecisions(reply.Content)
	if err != nil {
		if r.log != nil {
			r.log.Warnf("discarding reconciliation batch: %v", err)
			r.log.Debugf("unparseable reconciliation reply: %q", reply.Content)
		}
		return nil, err
	}

	var dl dropLogger
	if r.log != nil {
		dl = r.log
	}
	return ValidateDecisions(snapshot, decisions, dl), nil
}
