package ngram

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/karpnv/ngrampipe/shell"
)

// summaryLines is how many trailing report lines carry the perplexity and
// OOV statistics.
const summaryLines = 5

// Perplexity scores a binary model against a compiled corpus and returns
// the trailing summary block of the scorer's report. Not cached: scoring
// writes no file.
func (t *Toolset) Perplexity(ctx context.Context, modPath, farPath string) (string, error) {
	cmd := shell.Command{Name: "ngramperplexity", Args: []string{"--v=1", modPath, farPath}}
	res, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("scoring %s: %w", modPath, err)
	}
	return Summary(res.Stdout), nil
}

// Summary extracts the trailing statistics block from a scorer report.
// The scorer prints one line per corpus record at --v=1; only the last
// few lines hold the aggregate numbers.
func Summary(stdout string) string {
	lines := strings.Split(stdout, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) > summaryLines {
		lines = lines[len(lines)-summaryLines:]
	}
	return strings.Join(lines, "\n")
}

var perplexityRE = regexp.MustCompile(`perplexity\s*=\s*([0-9][0-9.eE+-]*)`)

// ParsePerplexity pulls the scalar perplexity out of a summary block.
func ParsePerplexity(summary string) (float64, error) {
	m := perplexityRE.FindStringSubmatch(summary)
	if m == nil {
		return 0, fmt.Errorf("no perplexity value in report: %q", summary)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing perplexity %q: %w", m[1], err)
	}
	return v, nil
}
