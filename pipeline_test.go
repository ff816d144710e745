package ngrampipe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/karpnv/ngrampipe/shell"
)

// scorerReport mimics the verbose scorer output: per-record lines first,
// aggregate statistics in the trailing block.
const scorerReport = "a b c\n" +
	"ngram  -0.5\n" +
	"ngram  -1.2\n" +
	"1052 sentences, 25231 words, 0 OOVs\n" +
	"0 zeroprobs\n" +
	"logprob = -114619\n" +
	"ngramperplexity\n" +
	"perplexity = 123.45\n"

// fakeTools emulates every external executable the pipeline shells out
// to, creating the output files the cache gates will stat.
type fakeTools struct {
	mu     sync.Mutex
	calls  []string
	pplOut string
	pplErr error
	// pplFor overrides pplOut per scored binary path.
	pplFor map[string]string
}

func (f *fakeTools) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd.Name)
	f.mu.Unlock()

	switch cmd.Name {
	case "ngramread":
		return shell.Result{}, touch(cmd.Args[2])
	case "ngrammerge":
		return shell.Result{}, touch(cmd.Args[5])
	case "ngramprint":
		return shell.Result{}, touch(cmd.Args[2])
	case "farcompilestrings":
		if _, err := io.ReadAll(cmd.Stdin); err != nil {
			return shell.Result{}, err
		}
		_, err := cmd.Stdout.Write([]byte("FAR"))
		return shell.Result{}, err
	case "ngramperplexity":
		if f.pplErr != nil {
			return shell.Result{}, f.pplErr
		}
		if out, ok := f.pplFor[cmd.Args[1]]; ok {
			return shell.Result{Stdout: out}, nil
		}
		return shell.Result{Stdout: f.pplOut}, nil
	default: // KenLM build binary
		return shell.Result{}, touch(cmd.Args[3])
	}
}

func (f *fakeTools) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func touch(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

// stubTokenizer is a minimal evaluation tokenizer: every word becomes a
// fixed in-vocabulary id.
type stubTokenizer struct{ vocab int }

func (s stubTokenizer) VocabSize() int { return s.vocab }

func (s stubTokenizer) Encode(text string) []int32 {
	ids := make([]int32, 0, 4)
	for range strings.Fields(text) {
		ids = append(ids, 0)
	}
	return ids
}

type fixture struct {
	arpaA, arpaB string
	outDir       string
	corpus       string
	tools        *fakeTools
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	fx := &fixture{
		arpaA:  filepath.Join(dir, "a.arpa"),
		arpaB:  filepath.Join(dir, "b.arpa"),
		outDir: filepath.Join(dir, "out"),
		corpus: filepath.Join(dir, "test.txt"),
		tools:  &fakeTools{pplOut: scorerReport},
	}
	for _, path := range []string{fx.arpaA, fx.arpaB} {
		if err := touch(path); err != nil {
			t.Fatalf("creating source model: %v", err)
		}
	}
	if err := os.WriteFile(fx.corpus, []byte("a b\nc\n"), 0o644); err != nil {
		t.Fatalf("creating corpus: %v", err)
	}
	return fx
}

func (fx *fixture) pipeline(t *testing.T, extra ...Option) *Pipeline {
	t.Helper()
	opts := append([]Option{
		WithRunner(fx.tools),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, extra...)
	p, err := New(fx.arpaA, 2, fx.arpaB, 1, fx.outDir, "build_binary", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func evalOptions(fx *fixture) []Option {
	return []Option{
		WithTestCorpus(fx.corpus),
		WithTokenizer(stubTokenizer{vocab: 3}),
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		arpaA string
		alpha float64
		arpaB string
		beta  float64
		out   string
		kenlm string
		want  error
	}{
		{"missing first model", "", 1, "b.arpa", 1, "out", "bin", ErrMissingModel},
		{"missing second model", "a.arpa", 1, "", 1, "out", "bin", ErrMissingModel},
		{"missing output dir", "a.arpa", 1, "b.arpa", 1, "", "bin", ErrMissingOutDir},
		{"missing kenlm binary", "a.arpa", 1, "b.arpa", 1, "out", "", ErrMissingKenLM},
		{"negative weight", "a.arpa", -1, "b.arpa", 1, "out", "bin", ErrNegativeWeight},
		{"zero weights", "a.arpa", 0, "b.arpa", 0, "out", "bin", ErrZeroWeights},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.arpaA, tt.alpha, tt.arpaB, tt.beta, tt.out, tt.kenlm)
			if !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPipeline_Run(t *testing.T) {
	fx := newFixture(t)
	p := fx.pipeline(t, evalOptions(fx)...)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantARPA := filepath.Join(fx.outDir, "a.arpa-2-b.arpa-1.arpa")
	if report.MergedARPA != wantARPA {
		t.Errorf("MergedARPA = %q, want %q", report.MergedARPA, wantARPA)
	}
	if report.MergedBinary != wantARPA+".mod" {
		t.Errorf("MergedBinary = %q, want %q", report.MergedBinary, wantARPA+".mod")
	}
	if report.Artifact != wantARPA+".kenlm" {
		t.Errorf("Artifact = %q, want %q", report.Artifact, wantARPA+".kenlm")
	}
	if !strings.Contains(report.Perplexity, "perplexity = 123.45") {
		t.Errorf("Perplexity summary = %q, missing perplexity line", report.Perplexity)
	}
	if strings.Contains(report.Perplexity, "a b c") {
		t.Errorf("Perplexity summary kept per-record lines: %q", report.Perplexity)
	}
	if p.State() != StateDone {
		t.Errorf("State = %v, want %v", p.State(), StateDone)
	}

	counts := map[string]int{
		"ngramread":         2,
		"ngrammerge":        1,
		"farcompilestrings": 1,
		"ngramperplexity":   1,
		"ngramprint":        1,
		"build_binary":      1,
	}
	for name, want := range counts {
		if got := fx.tools.count(name); got != want {
			t.Errorf("%s invoked %d times, want %d", name, got, want)
		}
	}

	// Symbol table and compiled corpus land in the output directory.
	if _, err := os.Stat(filepath.Join(fx.outDir, "tokenizer.syms")); err != nil {
		t.Errorf("symbol table not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fx.outDir, "test.txt.far")); err != nil {
		t.Errorf("compiled corpus not written: %v", err)
	}
}

func TestPipeline_SecondRunReusesCachedOutputs(t *testing.T) {
	fx := newFixture(t)
	p := fx.pipeline(t, evalOptions(fx)...)

	ctx := context.Background()
	if _, err := p.Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if _, err := p.Run(ctx); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	// Scoring writes no file, so only it reruns.
	for name, want := range map[string]int{
		"ngramread":         2,
		"ngrammerge":        1,
		"farcompilestrings": 1,
		"ngramprint":        1,
		"build_binary":      1,
		"ngramperplexity":   2,
	} {
		if got := fx.tools.count(name); got != want {
			t.Errorf("%s invoked %d times after two runs, want %d", name, got, want)
		}
	}
}

func TestPipeline_ForceRegeneratesCachedOutputs(t *testing.T) {
	fx := newFixture(t)

	ctx := context.Background()
	if _, err := fx.pipeline(t).Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if _, err := fx.pipeline(t, WithForce(true)).Run(ctx); err != nil {
		t.Fatalf("forced Run failed: %v", err)
	}

	for name, want := range map[string]int{
		"ngramread":    4,
		"ngrammerge":   2,
		"ngramprint":   2,
		"build_binary": 2,
	} {
		if got := fx.tools.count(name); got != want {
			t.Errorf("%s invoked %d times, want %d", name, got, want)
		}
	}
}

func TestPipeline_EvaluationFailureIsNonFatal(t *testing.T) {
	fx := newFixture(t)
	fx.tools.pplErr = errors.New("scorer crashed")
	p := fx.pipeline(t, evalOptions(fx)...)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Perplexity != "" {
		t.Errorf("Perplexity = %q, want empty after scorer failure", report.Perplexity)
	}
	if report.Artifact == "" {
		t.Error("artifact stage skipped after scorer failure")
	}
	if p.State() != StateDone {
		t.Errorf("State = %v, want %v", p.State(), StateDone)
	}
}

func TestPipeline_SkipsEvaluationWithoutTokenizer(t *testing.T) {
	fx := newFixture(t)
	// Corpus configured but no tokenizer: the evaluation branch stays off.
	p := fx.pipeline(t, WithTestCorpus(fx.corpus))

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Perplexity != "" {
		t.Errorf("Perplexity = %q, want empty", report.Perplexity)
	}
	if got := fx.tools.count("ngramperplexity"); got != 0 {
		t.Errorf("scorer invoked %d times, want 0", got)
	}
	if got := fx.tools.count("farcompilestrings"); got != 0 {
		t.Errorf("corpus compiler invoked %d times, want 0", got)
	}
}

func TestPipeline_ExistingSymbolTableIsUsed(t *testing.T) {
	fx := newFixture(t)
	symbols := filepath.Join(t.TempDir(), "custom.syms")
	if err := os.WriteFile(symbols, []byte("a 0\nb 1\nc 2\n"), 0o644); err != nil {
		t.Fatalf("writing symbols: %v", err)
	}
	p := fx.pipeline(t, append(evalOptions(fx), WithSymbolTable(symbols))...)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fx.outDir, "tokenizer.syms")); err == nil {
		t.Error("derived symbol table written despite explicit table")
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateMerging:          "merging",
		StateEvaluating:       "evaluating",
		StateArtifactBuilding: "artifact-building",
		StateDone:             "done",
		State(99):             "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
