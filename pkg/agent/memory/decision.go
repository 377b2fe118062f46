package memory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecisionAction is the tag of a reconciliation decision.
type DecisionAction string

const (
	ActionAdd    DecisionAction = "ADD"    // ActionAdd creates a new record; the store assigns the id.
	ActionUpdate DecisionAction = "UPDATE" // ActionUpdate replaces the text of an existing record in place.
	ActionDelete DecisionAction = "DELETE" // ActionDelete removes an existing record.
	ActionNone   DecisionAction = "NONE"   // ActionNone leaves an existing record untouched.
)

// Decision is the atomic unit of reconciliation output. Exactly one of the
// four action shapes applies:
//
//	ADD{text} | UPDATE{id, text} | DELETE{id} | NONE{id}
//
// Decisions are transient: they are produced by the reconciliation engine,
// validated against a snapshot, applied to the store, and never persisted.
type Decision struct {
	Action DecisionAction `json:"action"`
	ID     string         `json:"id,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// IsMutation returns true if applying the decision would change the store.
func (d Decision) IsMutation() bool {
	return d.Action != ActionNone
}

// validateShape checks that a decision carries the fields its action requires.
func (d Decision) validateShape() error {
	switch d.Action {
	case ActionAdd:
		if strings.TrimSpace(d.Text) == "" {
			return fmt.Errorf("memory: ADD decision with empty text")
		}
	case ActionUpdate:
		if d.ID == "" {
			return fmt.Errorf("memory: UPDATE decision without id")
		}
		if strings.TrimSpace(d.Text) == "" {
			return fmt.Errorf("memory: UPDATE decision with empty text")
		}
	case ActionDelete, ActionNone:
		if d.ID == "" {
			return fmt.Errorf("memory: %s decision without id", d.Action)
		}
	default:
		return fmt.Errorf("memory: unknown decision action %q", d.Action)
	}
	return nil
}

// ParseDecisions strictly parses a model reply as a JSON array of decision
// objects. Any deviation (prose, code fencing, an unknown action tag, a
// decision missing its required fields) fails the entire batch. Model output
// is untrusted text; nothing past this boundary executes on a loosely-typed
// shape.
func ParseDecisions(raw string) ([]Decision, error) {
	trimmed := strings.TrimSpace(raw)

	var decisions []Decision
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&decisions); err != nil {
		return nil, fmt.Errorf("memory: decision batch is not a JSON array of decisions: %w", err)
	}
	// Trailing content after the array is a batch failure too.
	if dec.More() {
		return nil, fmt.Errorf("memory: trailing content after decision array")
	}

	for i, d := range decisions {
		if err := d.validateShape(); err != nil {
			return nil, fmt.Errorf("memory: decision %d: %w", i, err)
		}
	}
	return decisions, nil
}

// dropLogger is the subset of the component logger the validator needs.
type dropLogger interface {
	Warnf(format string, v ...interface{})
}

// ValidateDecisions filters a parsed batch against the snapshot the
// reconciliation request was built from:
//
//   - ADD decisions are always kept; duplicate ADDs of textually-identical
//     facts (after whitespace trimming, case-sensitive) collapse to one.
//   - UPDATE/DELETE/NONE decisions are kept only if their id resolves in the
//     snapshot. An unresolvable id drops that single decision, not the batch;
//     ids absent from the snapshot were never offered to the model and must
//     not be honored.
//
// The surviving decisions keep their original relative order.
func ValidateDecisions(snapshot []Snapshot, decisions []Decision, log dropLogger) []Decision {
	known := make(map[string]bool, len(snapshot))
	for _, rec := range snapshot {
		known[rec.ID] = true
	}

	seenAdd := make(map[string]bool)
	valid := make([]Decision, 0, len(decisions))
	for _, d := range decisions {
		switch d.Action {
		case ActionAdd:
			text := strings.TrimSpace(d.Text)
			if seenAdd[text] {
				if log != nil {
					log.Warnf("dropping duplicate ADD decision for %q", text)
				}
				continue
			}
			seenAdd[text] = true
			valid = append(valid, Decision{Action: ActionAdd, Text: text})
		case ActionUpdate, ActionDelete, ActionNone:
			if !known[d.ID] {
				if log != nil {
					log.Warnf("dropping %s decision for unknown record id %q", d.Action, d.ID)
				}
				continue
			}
			d.Text = strings.TrimSpace(d.Text)
			valid = append(valid, d)
		}
	}
	return valid
}

// HasMutations returns true if any decision in the batch would change the store.
func HasMutations(decisions []Decision) bool {
	for _, d := range decisions {
		if d.IsMutation() {
			return true
		}
	}
	return false
}
