package ngrampipe

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/karpnv/ngrampipe/ngram"
)

// WeightPair is one (alpha, beta) interpolation choice.
type WeightPair struct {
	Alpha float64
	Beta  float64
}

// SweepResult holds the scored outcome for one weight pair.
type SweepResult struct {
	Pair       WeightPair
	Perplexity float64
	Summary    string
}

// WeightPairs generates (w, total-w) pairs stepping w from min to max.
func WeightPairs(min, max, step, total float64) []WeightPair {
	var pairs []WeightPair
	for w := min; w <= max; w += step {
		pairs = append(pairs, WeightPair{Alpha: w, Beta: total - w})
	}
	return pairs
}

// Sweep merges the two source models at every weight pair and scores each
// merge against the configured test corpus, returning results sorted by
// ascending perplexity (best first). The corpus is compiled once; every
// merge output lands on its own weight-derived path, so the per-pair
// merges cache independently.
func (p *Pipeline) Sweep(ctx context.Context, pairs []WeightPair) ([]SweepResult, error) {
	if !p.evaluating() {
		return nil, ErrNoEvaluation
	}
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	farPath, err := p.prepareCorpus(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(pairs))
	for _, pair := range pairs {
		modC, _, err := p.tools.Merge(ctx, p.arpaA, pair.Alpha, p.arpaB, pair.Beta, p.outDir, p.cfg.force)
		if err != nil {
			return nil, fmt.Errorf("sweep merge %g/%g: %w", pair.Alpha, pair.Beta, err)
		}
		summary, err := p.tools.Perplexity(ctx, modC, farPath)
		if err != nil {
			return nil, fmt.Errorf("sweep score %g/%g: %w", pair.Alpha, pair.Beta, err)
		}
		ppl, err := ngram.ParsePerplexity(summary)
		if err != nil {
			return nil, fmt.Errorf("sweep score %g/%g: %w", pair.Alpha, pair.Beta, err)
		}

		p.cfg.logger.Info("sweep point", "alpha", pair.Alpha, "beta", pair.Beta, "perplexity", ppl)
		results = append(results, SweepResult{Pair: pair, Perplexity: ppl, Summary: summary})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Perplexity < results[j].Perplexity
	})
	return results, nil
}
