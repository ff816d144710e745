// Package ngram wraps the external n-gram toolset: ARPA/binary format
// conversion, weighted model interpolation, perplexity scoring, and the
// final KenLM artifact build. Every operation is a synchronous external
// command gated by the skip-if-exists cache check.
package ngram

import (
	"log/slog"

	"github.com/karpnv/ngrampipe/shell"
)

// Suffixes deriving stage output paths from their inputs.
const (
	// BinarySuffix is appended to an ARPA path to derive its binary form.
	BinarySuffix = ".mod"
	// KenLMSuffix is appended to an ARPA path to derive the deployable artifact.
	KenLMSuffix = ".kenlm"
)

// Toolset invokes the external n-gram executables.
type Toolset struct {
	runner shell.Runner
	logger *slog.Logger
}

// NewToolset builds a Toolset. A nil runner means local child processes;
// a nil logger means slog.Default().
func NewToolset(runner shell.Runner, logger *slog.Logger) *Toolset {
	if runner == nil {
		runner = shell.Local{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{runner: runner, logger: logger}
}
