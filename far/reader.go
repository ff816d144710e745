package far

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Line is one corpus entry: the raw text and, for manifest corpora, an
// optional language tag consumed by aggregate tokenizers.
type Line struct {
	Text string
	Lang string
}

// openCorpus opens a corpus file for line-oriented reading. Supported
// forms: plain text, JSON-lines manifests ({"text": ..., "lang": ...}),
// and gzip-compressed variants of either.
func openCorpus(path string) (io.ReadCloser, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}

	name := path
	var rc io.ReadCloser = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, false, fmt.Errorf("opening gzip corpus: %w", err)
		}
		rc = &gzipReadCloser{zr: zr, f: f}
		name = strings.TrimSuffix(path, ".gz")
	}

	manifest := strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".jsonl")
	return rc, manifest, nil
}

func parseLine(raw []byte, manifest bool) (Line, error) {
	if !manifest {
		return Line{Text: string(raw)}, nil
	}
	var entry struct {
		Text string `json:"text"`
		Lang string `json:"lang"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Line{}, fmt.Errorf("parsing manifest line: %w", err)
	}
	return Line{Text: entry.Text, Lang: entry.Lang}, nil
}

type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipReadCloser) Close() error {
	return errors.Join(g.zr.Close(), g.f.Close())
}
