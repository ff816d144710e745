package ngram

import (
	"context"
	"fmt"

	"github.com/karpnv/ngrampipe/internal/gate"
	"github.com/karpnv/ngrampipe/shell"
)

// BuildKenLM compresses an ARPA model into the final deployable trie
// binary using the KenLM build_binary executable at kenlmBin.
func (t *Toolset) BuildKenLM(ctx context.Context, kenlmBin, arpaPath string, force bool) (string, error) {
	outPath := arpaPath + KenLMSuffix
	if gate.Check(outPath, force, t.logger) == gate.Skip {
		return outPath, nil
	}

	t.logger.Info("building kenlm artifact", "arpa", arpaPath, "out", outPath)
	cmd := shell.Command{Name: kenlmBin, Args: []string{"trie", "-i", arpaPath, outPath}}
	if _, err := t.runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("building kenlm model: %w", err)
	}
	return outPath, nil
}
