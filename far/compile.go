package far

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/karpnv/ngrampipe/internal/gate"
	"github.com/karpnv/ngrampipe/shell"
)

// ErrSymbolMismatch reports a symbol table whose size disagrees with the
// tokenizer vocabulary. Without this check the mismatch would silently
// corrupt every downstream perplexity number.
var ErrSymbolMismatch = errors.New("far: symbol table out of sync with tokenizer")

// Tokenizer is what the compiler needs from a tokenizer: the vocabulary
// size the symbol table must match, and text → token ids.
type Tokenizer interface {
	VocabSize() int
	Encode(text string) []int32
}

// LangTokenizer is additionally implemented by aggregate tokenizers that
// key encoding by a manifest language tag.
type LangTokenizer interface {
	EncodeLang(lang, text string) []int32
}

// Compiler streams a text corpus through a tokenizer into the external
// compiled-text builder.
//
// The builder runs as a child process with its stdout redirected to the
// output file. A producer goroutine feeds tokenized lines into its stdin
// one at a time through a pipe, so the corpus is never buffered in memory
// and the process consumes input while producing output. End of corpus
// half-closes stdin; the compiler then waits for the process to exit.
type Compiler struct {
	tok    Tokenizer
	runner shell.Runner
	norm   Normalize
	logger *slog.Logger
}

// NewCompiler builds a Compiler. A nil runner means local child
// processes; a nil logger means slog.Default().
func NewCompiler(tok Tokenizer, runner shell.Runner, norm Normalize, logger *slog.Logger) *Compiler {
	if runner == nil {
		runner = shell.Local{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{tok: tok, runner: runner, norm: norm, logger: logger}
}

// Compile tokenizes the corpus at textPath against the symbol table at
// symbolsPath and writes the compiled form to farPath. Skipped when the
// output already exists and force is false. Any builder failure removes
// the partial output so a rerun regenerates it.
func (c *Compiler) Compile(ctx context.Context, symbolsPath, textPath, farPath string, force bool) error {
	if gate.Check(farPath, force, c.logger) == gate.Skip {
		return nil
	}

	count, err := SymbolCount(symbolsPath)
	if err != nil {
		return fmt.Errorf("reading symbol table: %w", err)
	}
	if count != c.tok.VocabSize() {
		return fmt.Errorf("%w: table %s has %d entries, vocabulary has %d",
			ErrSymbolMismatch, symbolsPath, count, c.tok.VocabSize())
	}

	out, err := os.Create(farPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", farPath, err)
	}

	c.logger.Info("compiling corpus", "text", textPath, "symbols", symbolsPath, "out", farPath)

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- c.produce(pw, textPath)
	}()

	cmd := shell.Command{
		Name: "farcompilestrings",
		Args: []string{
			"--generate_keys=10",
			"--fst_type=compact",
			"--symbols=" + symbolsPath,
			"--keep_symbols",
		},
		Stdin:  pr,
		Stdout: out,
	}
	_, runErr := c.runner.Run(ctx, cmd)
	// If the builder died early the producer is blocked on the pipe;
	// closing the read end unblocks it.
	_ = pr.Close()
	prodErr := <-done
	closeErr := out.Close()

	if runErr != nil || prodErr != nil || closeErr != nil {
		_ = os.Remove(farPath)
		if runErr != nil {
			return fmt.Errorf("compiling corpus: %w", runErr)
		}
		if prodErr != nil && !errors.Is(prodErr, io.ErrClosedPipe) {
			return fmt.Errorf("reading corpus: %w", prodErr)
		}
		if prodErr != nil {
			return fmt.Errorf("compiling corpus: %w", prodErr)
		}
		return closeErr
	}
	return nil
}

// produce reads the corpus line by line, normalizes and tokenizes each
// line, and writes the symbol form to the builder's stdin. It always
// closes pw so the builder sees end-of-input.
func (c *Compiler) produce(pw *io.PipeWriter, textPath string) error {
	fail := func(err error) error {
		pw.CloseWithError(err)
		return err
	}

	rc, manifest, err := openCorpus(textPath)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = rc.Close() }()

	bw := bufio.NewWriter(pw)
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		line, err := parseLine(sc.Bytes(), manifest)
		if err != nil {
			return fail(err)
		}
		text := c.norm.Apply(line.Text)
		if text == "" {
			continue
		}
		ids := c.encode(line.Lang, text)
		if len(ids) == 0 {
			continue
		}
		if _, err := bw.WriteString(symbolLine(ids)); err != nil {
			return fail(err)
		}
	}
	if err := sc.Err(); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	return pw.Close()
}

func (c *Compiler) encode(lang, text string) []int32 {
	if lang != "" {
		if lt, ok := c.tok.(LangTokenizer); ok {
			return lt.EncodeLang(lang, text)
		}
	}
	return c.tok.Encode(text)
}

func symbolLine(ids []int32) string {
	var b strings.Builder
	b.Grow(2 * len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(SymbolFor(id))
	}
	b.WriteByte('\n')
	return b.String()
}
