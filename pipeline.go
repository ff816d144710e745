package ngrampipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karpnv/ngrampipe/far"
	"github.com/karpnv/ngrampipe/ngram"
	"github.com/karpnv/ngrampipe/tokenizer"
)

// State identifies a phase of a pipeline run.
type State int

const (
	StateMerging State = iota
	StateEvaluating
	StateArtifactBuilding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateMerging:
		return "merging"
	case StateEvaluating:
		return "evaluating"
	case StateArtifactBuilding:
		return "artifact-building"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Report summarizes a finished run.
type Report struct {
	MergedBinary string
	MergedARPA   string
	Artifact     string
	// Perplexity holds the scorer's summary block; empty when the
	// evaluation branch was skipped or failed.
	Perplexity string
}

// Pipeline sequences the merge, optional evaluation, and artifact stages.
// A Pipeline is single-use state for one run; all durable state lives in
// the output directory.
type Pipeline struct {
	arpaA, arpaB string
	alpha, beta  float64
	outDir       string
	kenlmBin     string

	cfg   config
	tools *ngram.Toolset
	state State
}

// New validates the configuration and builds a pipeline. The weights are
// relative: alpha*A + beta*B, renormalized during the merge, so callers
// express trust ratios without computing fractions.
func New(arpaA string, alpha float64, arpaB string, beta float64, outDir, kenlmBin string, opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if arpaA == "" || arpaB == "" {
		return nil, ErrMissingModel
	}
	if outDir == "" {
		return nil, ErrMissingOutDir
	}
	if kenlmBin == "" {
		return nil, ErrMissingKenLM
	}
	if alpha < 0 || beta < 0 {
		return nil, ErrNegativeWeight
	}
	if alpha == 0 && beta == 0 {
		return nil, ErrZeroWeights
	}

	return &Pipeline{
		arpaA:    arpaA,
		arpaB:    arpaB,
		alpha:    alpha,
		beta:     beta,
		outDir:   outDir,
		kenlmBin: kenlmBin,
		cfg:      cfg,
		tools:    ngram.NewToolset(cfg.runner, cfg.logger),
	}, nil
}

// State reports the phase the last (or current) run reached.
func (p *Pipeline) State() State {
	return p.state
}

// Run drives the pipeline to completion: merge both models, evaluate the
// merged model when a test corpus and tokenizer are configured, then
// build the ARPA and KenLM artifacts. An evaluation failure is logged and
// reported in the log only; every other stage failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	report := &Report{}

	p.enter(StateMerging)
	modC, arpaC, err := p.tools.Merge(ctx, p.arpaA, p.alpha, p.arpaB, p.beta, p.outDir, p.cfg.force)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	report.MergedBinary = modC
	report.MergedARPA = arpaC

	if p.evaluating() {
		p.enter(StateEvaluating)
		summary, err := p.evaluate(ctx, modC)
		if err != nil {
			// Informational branch: surface the failure, keep building.
			p.cfg.logger.Error("evaluation failed", "error", err)
		} else {
			p.cfg.logger.Info("perplexity summary", "report", summary)
			report.Perplexity = summary
		}
	}

	p.enter(StateArtifactBuilding)
	if err := p.tools.ToARPA(ctx, modC, arpaC, p.cfg.force); err != nil {
		return nil, fmt.Errorf("printing merged model: %w", err)
	}
	artifact, err := p.tools.BuildKenLM(ctx, p.kenlmBin, arpaC, p.cfg.force)
	if err != nil {
		return nil, fmt.Errorf("building artifact: %w", err)
	}
	report.Artifact = artifact

	p.enter(StateDone)
	return report, nil
}

func (p *Pipeline) enter(s State) {
	p.state = s
	p.cfg.logger.Debug("pipeline state", "state", s.String())
}

func (p *Pipeline) evaluating() bool {
	return p.cfg.testCorpus != "" && (p.cfg.tokenizer != nil || p.cfg.tokenizerModel != "")
}

// evaluate compiles the test corpus (building the symbol table first if
// none was supplied) and scores the merged binary against it.
func (p *Pipeline) evaluate(ctx context.Context, modC string) (string, error) {
	farPath, err := p.prepareCorpus(ctx)
	if err != nil {
		return "", err
	}
	return p.tools.Perplexity(ctx, modC, farPath)
}

// prepareCorpus resolves the tokenizer and symbol table and compiles the
// test corpus, returning the compiled corpus path. Each product is cached
// independently.
func (p *Pipeline) prepareCorpus(ctx context.Context) (string, error) {
	tok := p.cfg.tokenizer
	if tok == nil {
		t, err := tokenizer.New(p.cfg.tokenizerModel)
		if err != nil {
			return "", fmt.Errorf("loading tokenizer: %w", err)
		}
		tok = t
	}

	symbols := p.cfg.symbols
	if symbols == "" {
		ref := p.cfg.tokenizerModel
		if ref == "" {
			ref = "tokenizer"
		}
		symbols = filepath.Join(p.outDir, filepath.Base(ref)+".syms")
		if err := far.WriteSymbolTable(symbols, tok.VocabSize(), p.cfg.force, p.cfg.logger); err != nil {
			return "", err
		}
	}

	farPath := filepath.Join(p.outDir, filepath.Base(p.cfg.testCorpus)+".far")
	compiler := far.NewCompiler(tok, p.cfg.runner, p.cfg.normalize, p.cfg.logger)
	if err := compiler.Compile(ctx, symbols, p.cfg.testCorpus, farPath, p.cfg.force); err != nil {
		return "", err
	}
	return farPath, nil
}
