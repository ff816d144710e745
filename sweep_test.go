package ngrampipe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/karpnv/ngrampipe/ngram"
)

func TestWeightPairs(t *testing.T) {
	got := WeightPairs(1, 3, 1, 4)
	want := []WeightPair{{1, 3}, {2, 2}, {3, 1}}
	if len(got) != len(want) {
		t.Fatalf("WeightPairs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSweep_RanksByPerplexity(t *testing.T) {
	fx := newFixture(t)
	p := fx.pipeline(t, evalOptions(fx)...)

	report := func(ppl float64) string {
		return fmt.Sprintf("1052 sentences\n0 OOVs\nperplexity = %g\n", ppl)
	}
	modFor := func(alpha, beta float64) string {
		return ngram.MergedPath(fx.outDir, fx.arpaA, alpha, fx.arpaB, beta) + ".mod"
	}
	fx.tools.pplFor = map[string]string{
		modFor(1, 3): report(300),
		modFor(2, 2): report(150),
		modFor(3, 1): report(220),
	}

	results, err := p.Sweep(context.Background(), WeightPairs(1, 3, 1, 4))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantOrder := []WeightPair{{2, 2}, {3, 1}, {1, 3}}
	wantPpl := []float64{150, 220, 300}
	for i, res := range results {
		if res.Pair != wantOrder[i] {
			t.Errorf("result %d pair = %v, want %v", i, res.Pair, wantOrder[i])
		}
		if res.Perplexity != wantPpl[i] {
			t.Errorf("result %d perplexity = %g, want %g", i, res.Perplexity, wantPpl[i])
		}
	}

	// One merge per pair, one corpus compile total.
	if got := fx.tools.count("ngrammerge"); got != 3 {
		t.Errorf("merger invoked %d times, want 3", got)
	}
	if got := fx.tools.count("farcompilestrings"); got != 1 {
		t.Errorf("corpus compiler invoked %d times, want 1", got)
	}
}

func TestSweep_RequiresEvaluation(t *testing.T) {
	fx := newFixture(t)
	p := fx.pipeline(t)

	_, err := p.Sweep(context.Background(), WeightPairs(1, 3, 1, 4))
	if !errors.Is(err, ErrNoEvaluation) {
		t.Errorf("Sweep error = %v, want %v", err, ErrNoEvaluation)
	}
}
