package ngrampipe

import "errors"

// Configuration errors, surfaced by New before any external command runs.
var (
	// ErrMissingModel indicates an empty source model path.
	ErrMissingModel = errors.New("ngrampipe: source model path is empty")

	// ErrMissingOutDir indicates an empty output directory.
	ErrMissingOutDir = errors.New("ngrampipe: output directory is empty")

	// ErrMissingKenLM indicates an empty KenLM build_binary path.
	ErrMissingKenLM = errors.New("ngrampipe: kenlm build_binary path is empty")

	// ErrNegativeWeight indicates a negative interpolation weight.
	ErrNegativeWeight = errors.New("ngrampipe: interpolation weights must be non-negative")

	// ErrZeroWeights indicates both interpolation weights are zero.
	ErrZeroWeights = errors.New("ngrampipe: at least one interpolation weight must be positive")

	// ErrNoEvaluation indicates an operation that needs the evaluation
	// branch (test corpus plus tokenizer) was requested without it.
	ErrNoEvaluation = errors.New("ngrampipe: no test corpus or tokenizer configured")
)
