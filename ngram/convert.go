package ngram

import (
	"context"
	"fmt"

	"github.com/karpnv/ngrampipe/internal/gate"
	"github.com/karpnv/ngrampipe/shell"
)

// ToBinary compiles an ARPA text model into the toolset's binary form.
// The binary lives next to the source with the ".mod" suffix; one text
// model has exactly one binary form, so the cache gate makes regeneration
// a no-op. A malformed source model is fatal.
func (t *Toolset) ToBinary(ctx context.Context, arpaPath string, force bool) (string, error) {
	modPath := arpaPath + BinarySuffix
	if gate.Check(modPath, force, t.logger) == gate.Skip {
		return modPath, nil
	}

	t.logger.Info("converting model to binary", "arpa", arpaPath, "mod", modPath)
	cmd := shell.Command{Name: "ngramread", Args: []string{"--ARPA", arpaPath, modPath}}
	if _, err := t.runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("reading %s: %w", arpaPath, err)
	}
	return modPath, nil
}

// ToARPA prints a binary model back to ARPA text form at arpaPath.
func (t *Toolset) ToARPA(ctx context.Context, modPath, arpaPath string, force bool) error {
	if gate.Check(arpaPath, force, t.logger) == gate.Skip {
		return nil
	}

	t.logger.Info("printing model to ARPA", "mod", modPath, "arpa", arpaPath)
	cmd := shell.Command{Name: "ngramprint", Args: []string{"--ARPA", modPath, arpaPath}}
	if _, err := t.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("printing %s: %w", modPath, err)
	}
	return nil
}
