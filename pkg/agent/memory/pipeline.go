package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/llm/tokenizer"
	"github.com/entrhq/recall/pkg/logging"
)

// Pipeline runs the per-exchange memory flow: extract facts from the user's
// message, reconcile them against the current record set, apply the validated
// decisions, checkpoint, and fold the committed facts into the running
// summary.
//
// One pipeline owns one store. Invocations for the same store never
// interleave; the pipeline mutex spans the whole exchange so checkpoints stay
// totally ordered. No failure inside the pipeline is fatal to the host
// session; the failure mode is always "skip this update".
type Pipeline struct {
	store      *Store
	extractor  *Extractor
	reconciler *Reconciler
	summarizer *Summarizer
	log        *logging.Logger
	mu         sync.Mutex
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	maxFacts           int
	extractionModel    string
	summarizationModel string
}

// WithMaxFacts caps how many facts one exchange may contribute.
func WithMaxFacts(n int) PipelineOption {
	return func(c *pipelineConfig) {
		c.maxFacts = n
	}
}

// WithExtractionModel routes extraction calls to a different model. The
// provider must implement llm.ModelCloner for this to take effect.
func WithExtractionModel(model string) PipelineOption {
	return func(c *pipelineConfig) {
		c.extractionModel = model
	}
}

// WithSummarizationModel routes summarization calls to a different model. The
// provider must implement llm.ModelCloner for this to take effect.
func WithSummarizationModel(model string) PipelineOption {
	return func(c *pipelineConfig) {
		c.summarizationModel = model
	}
}

// ExchangeResult reports what one exchange contributed to the store.
type ExchangeResult struct {
	// Facts are the extracted candidate facts, before reconciliation.
	Facts []string

	// Applied reports the record mutations the reconciled batch produced.
	Applied ApplyResult

	// SummaryUpdated is true if the running summary was revised.
	SummaryUpdated bool
}

// NewPipeline creates a memory pipeline over the given provider and store.
func NewPipeline(provider llm.Provider, store *Store, log *logging.Logger, opts ...PipelineOption) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("memory: pipeline requires a provider")
	}
	if store == nil {
		return nil, fmt.Errorf("memory: pipeline requires a store")
	}

	cfg := &pipelineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Token budgeting is best-effort: without the encoding, prompts go out
	// untruncated rather than failing pipeline construction.
	tok, err := tokenizer.New()
	if err != nil {
		tok = nil
		if log != nil {
			log.Warnf("tokenizer unavailable, prompt budgeting disabled: %v", err)
		}
	}

	extractionProvider := providerForModel(provider, cfg.extractionModel)
	summarizationProvider := providerForModel(provider, cfg.summarizationModel)

	return &Pipeline{
		store:      store,
		extractor:  NewExtractor(extractionProvider, tok, cfg.maxFacts, log),
		reconciler: NewReconciler(provider, log),
		summarizer: NewSummarizer(summarizationProvider, tok, log),
		log:        log,
	}, nil
}

// providerForModel clones the provider for a model override when one is set
// and the provider supports cloning; otherwise the main provider is used.
func providerForModel(provider llm.Provider, model string) llm.Provider {
	if model == "" || model == provider.GetModel() {
		return provider
	}
	if cloner, ok := provider.(llm.ModelCloner); ok {
		return cloner.CloneWithModel(model)
	}
	return provider
}

// Store returns the store this pipeline writes to.
func (p *Pipeline) Store() *Store {
	return p.store
}

// ProcessExchange runs the memory flow for the latest user-authored message
// of one exchange. Assistant and system content must not be passed in.
//
// Cancellation between stages leaves the store at its last checkpointed
// state; partial decisions are never applied.
func (p *Pipeline) ProcessExchange(ctx context.Context, userText string) (*ExchangeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := &ExchangeResult{}

	facts := p.extractor.Extract(ctx, userText)
	if len(facts) == 0 {
		// Nothing durable: the store stays unmutated and uncheckpointed.
		return result, ctx.Err()
	}
	result.Facts = facts
	p.debugf("extracted %d fact(s): %v", len(facts), facts)

	snapshot := p.store.ListRecords()

	decisions, err := p.reconciler.Reconcile(ctx, snapshot, facts)
	if err != nil {
		// Already logged by the reconciler; the exchange contributes nothing.
		return result, nil
	}
	if !HasMutations(decisions) {
		p.debugf("reconciliation produced no mutations")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		// Cancelled mid-flight: discard the batch before any mutation.
		return result, err
	}

	applied, err := p.store.Apply(decisions)
	if err != nil {
		p.errorf("failed to apply decision batch: %v", err)
		return result, nil
	}
	result.Applied = applied

	if err := p.store.Checkpoint("memory: " + applied.String()); err != nil {
		p.errorf("checkpoint failed: %v", err)
	}

	p.updateSummary(ctx, decisions, result)
	return result, nil
}

// updateSummary folds the batch's committed facts into the running summary
// and checkpoints the revision. Summary failures keep the prior summary.
func (p *Pipeline) updateSummary(ctx context.Context, decisions []Decision, result *ExchangeResult) {
	var committed []string
	for _, d := range decisions {
		if d.Action == ActionAdd || d.Action == ActionUpdate {
			committed = append(committed, d.Text)
		}
	}
	if len(committed) == 0 {
		return
	}

	previous := p.store.Summary()
	summary, err := p.summarizer.Summarize(ctx, previous, committed)
	if err != nil {
		p.warnf("summary update skipped: %v", err)
		return
	}
	if summary == previous {
		return
	}

	p.store.SetSummary(summary)
	result.SummaryUpdated = true
	if err := p.store.Checkpoint("memory: update summary"); err != nil {
		p.errorf("summary checkpoint failed: %v", err)
	}
}

func (p *Pipeline) debugf(format string, v ...interface{}) {
	if p.log != nil {
		p.log.Debugf(format, v...)
	}
}

func (p *Pipeline) warnf(format string, v ...interface{}) {
	if p.log != nil {
		p.log.Warnf(format, v...)
	}
}

func (p *Pipeline) errorf(format string, v ...interface{}) {
	if p.log != nil {
		p.log.Errorf(format, v...)
	}
}
