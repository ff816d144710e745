package ngrampipe

import (
	"log/slog"

	"github.com/karpnv/ngrampipe/far"
	"github.com/karpnv/ngrampipe/shell"
)

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	force          bool
	logger         *slog.Logger
	runner         shell.Runner
	testCorpus     string
	symbols        string
	tokenizer      far.Tokenizer
	tokenizerModel string
	normalize      far.Normalize
}

func defaultConfig() config {
	return config{
		logger: slog.Default(),
		runner: shell.Local{},
		// Punctuation separated from the preceding word, as the scoring
		// corpus convention expects.
		normalize: far.Normalize{SeparatePunctuation: true},
	}
}

// WithForce regenerates every stage output even when it already exists
// (default: reuse existing files).
func WithForce(force bool) Option {
	return func(c *config) {
		c.force = force
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRunner sets the external command runner (default: local child
// processes). Tests use this to substitute fakes.
func WithRunner(r shell.Runner) Option {
	return func(c *config) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithTestCorpus enables the evaluation branch: the corpus at path is
// compiled and the merged model's perplexity against it is reported.
// Requires a tokenizer (WithTokenizerModel or WithTokenizer).
func WithTestCorpus(path string) Option {
	return func(c *config) {
		c.testCorpus = path
	}
}

// WithSymbolTable uses an existing symbol table instead of deriving one
// from the tokenizer vocabulary.
func WithSymbolTable(path string) Option {
	return func(c *config) {
		c.symbols = path
	}
}

// WithTokenizerModel loads the evaluation tokenizer from a SentencePiece
// .model file when the pipeline runs.
func WithTokenizerModel(path string) Option {
	return func(c *config) {
		c.tokenizerModel = path
	}
}

// WithTokenizer supplies an already constructed tokenizer, flat or
// aggregate. Takes precedence over WithTokenizerModel.
func WithTokenizer(tok far.Tokenizer) Option {
	return func(c *config) {
		c.tokenizer = tok
	}
}

// WithNormalize sets the corpus text normalization applied before
// tokenization (default: separate trailing punctuation only).
func WithNormalize(n far.Normalize) Option {
	return func(c *config) {
		c.normalize = n
	}
}
