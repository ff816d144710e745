// Package far builds the symbol table and compiled-corpus inputs of the
// external scorer: a token→id table covering the tokenizer vocabulary,
// and an FST archive produced by streaming the tokenized corpus through
// the external compiled-text builder.
package far

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/karpnv/ngrampipe/internal/gate"
)

// TokenOffset shifts token ids into a character range clear of ordinary
// text, so every id maps to a single printable symbol. The model, symbol
// table, and compiled corpus all use the same offset.
const TokenOffset = 100

// SymbolFor returns the one-character symbol for a token id.
func SymbolFor(id int32) string {
	return string(rune(TokenOffset + id))
}

// WriteSymbols writes the token→id table for a vocabulary of vocabSize
// entries: one "<symbol> <id>" line per id, in index order. The output is
// a pure function of vocabSize, so regenerating it for the same tokenizer
// state reproduces the file byte for byte.
func WriteSymbols(w io.Writer, vocabSize int) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < vocabSize; i++ {
		if _, err := fmt.Fprintf(bw, "%s %d\n", SymbolFor(int32(i)), i); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSymbolTable materializes the symbol table at path unless the cache
// gate says the existing file can be reused.
func WriteSymbolTable(path string, vocabSize int, force bool, logger *slog.Logger) error {
	if gate.Check(path, force, logger) == gate.Skip {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating symbol table: %w", err)
	}
	if err := WriteSymbols(f, vocabSize); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing symbol table: %w", err)
	}
	return f.Close()
}

// SymbolCount returns the number of entries in a symbol table file.
func SymbolCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(sc.Bytes()) > 0 {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
