package memory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractionSystemPrompt instructs the model to distill the user's words into
// durable atomic facts. The reply must be machine-parseable: a bare JSON
// array of strings, nothing else.
const extractionSystemPrompt = "You extract durable facts about the user from their message. " +
	"A durable fact is a short, atomic, standalone sentence about the user that will still matter in future conversations " +
	"(preferences, relationships, possessions, plans, biographical details). " +
	"Ignore assistant and system content entirely; only the user's own words are evidence. " +
	"Never output acknowledgements, questions, meta-commentary, or refusals. " +
	"Respond with ONLY a JSON array of strings, at most %d entries. " +
	"If the message contains nothing worth remembering, respond with []."

// reconciliationSystemPrompt instructs the model to reconcile new facts
// against the existing record set. The engine validates every decision after
// the call; the pairing guideline for DELETE is a prompt constraint, not an
// engine-enforced rule.
const reconciliationSystemPrompt = "You maintain a long-term memory store for a conversational agent. " +
	"Given the existing memory records and a list of newly observed facts, decide what to do with each fact. " +
	"Respond with ONLY a JSON array of decision objects, no prose and no code fencing. Each object is exactly one of:\n" +
	`  {"action": "ADD", "text": "<new fact>"}: the fact is new information` + "\n" +
	`  {"action": "UPDATE", "id": "<existing id>", "text": "<revised fact>"}: the fact refines or corrects an existing record` + "\n" +
	`  {"action": "DELETE", "id": "<existing id>"}: an existing record is now wrong or obsolete` + "\n" +
	`  {"action": "NONE", "id": "<existing id>"}: the record already covers the fact; no change` + "\n" +
	"Only reference ids that appear in the existing records. " +
	"When a fact contradicts a record, prefer UPDATE over DELETE; if you must DELETE superseded information, " +
	"pair the DELETE with an ADD or UPDATE carrying the replacement in the same reply so no information silently disappears. " +
	"Emit at most one decision per new fact, plus any DELETE decisions required by superseded records."

// summarizationSystemPrompt instructs the model to fold newly committed facts
// into the running summary.
const summarizationSystemPrompt = "You maintain a brief running summary of what is known about the user. " +
	"Fold the new facts into the previous summary: aggregate related statements instead of concatenating them, " +
	"drop anything the previous summary already implies, and keep the result compact prose. " +
	"Respond with ONLY the replacement summary text."

// buildExtractionPrompt renders the user-side content of an extraction request.
func buildExtractionPrompt(userText string) string {
	var sb strings.Builder
	sb.WriteString("User message:\n")
	sb.WriteString(userText)
	return sb.String()
}

// buildReconciliationPrompt renders the user-side content of a reconciliation
// request: the current records and the new facts, both as JSON.
func buildReconciliationPrompt(snapshot []Snapshot, facts []string) (string, error) {
	// Marshal an empty slice (not nil) so the model always sees an array.
	if snapshot == nil {
		snapshot = []Snapshot{}
	}
	records, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("memory: marshal record snapshot: %w", err)
	}
	newFacts, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("memory: marshal new facts: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Existing memory records:\n")
	sb.Write(records)
	sb.WriteString("\n\nNew facts:\n")
	sb.Write(newFacts)
	return sb.String(), nil
}

// buildSummarizationPrompt renders the user-side content of a summary update.
func buildSummarizationPrompt(previousSummary string, facts []string) string {
	var sb strings.Builder
	sb.WriteString("Previous summary:\n")
	if strings.TrimSpace(previousSummary) == "" {
		sb.WriteString("(empty)")
	} else {
		sb.WriteString(previousSummary)
	}
	sb.WriteString("\n\nNew facts:\n")
	for _, fact := range facts {
		sb.WriteString("- ")
		sb.WriteString(fact)
		sb.WriteString("\n")
	}
	return sb.String()
}
