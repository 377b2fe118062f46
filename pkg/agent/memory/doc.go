// Package memory implements the long-term memory subsystem for a
// conversational session. It turns raw exchanges into short factual records,
// reconciles new facts against the existing record set with a model-assisted
// decision step, maintains a running summary, and persists everything in a
// git-versioned store that commits one checkpoint per applied batch.
package memory
