package ngram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/karpnv/ngrampipe/internal/gate"
	"github.com/karpnv/ngrampipe/shell"
)

// MergedPath derives the output ARPA path for a weighted merge. Both
// source basenames and both weights are part of the name, so distinct
// weight choices never reuse each other's cached output.
func MergedPath(outDir, arpaA string, alpha float64, arpaB string, beta float64) string {
	name := fmt.Sprintf("%s-%s-%s-%s.arpa",
		filepath.Base(arpaA), formatWeight(alpha),
		filepath.Base(arpaB), formatWeight(beta))
	return filepath.Join(outDir, name)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// Merge interpolates two ARPA models as alpha*A + beta*B. The weights are
// relative trust ratios; the merger renormalizes, so per-context
// probabilities stay a distribution regardless of their scale.
//
// Both inputs are converted to binary first (concurrently; they have no
// ordering dependency). Returns the merged binary path and the ARPA path
// the artifact stage will later print to. A failed merge removes any
// partial output so a retry starts clean.
func (t *Toolset) Merge(ctx context.Context, arpaA string, alpha float64, arpaB string, beta float64, outDir string, force bool) (modC, arpaC string, err error) {
	var (
		modA, modB string
		errA, errB error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		modA, errA = t.ToBinary(ctx, arpaA, force)
	}()
	go func() {
		defer wg.Done()
		modB, errB = t.ToBinary(ctx, arpaB, force)
	}()
	wg.Wait()
	if errA != nil {
		return "", "", errA
	}
	if errB != nil {
		return "", "", errB
	}

	arpaC = MergedPath(outDir, arpaA, alpha, arpaB, beta)
	modC = arpaC + BinarySuffix
	if gate.Check(modC, force, t.logger) == gate.Skip {
		return modC, arpaC, nil
	}

	t.logger.Info("merging models",
		"a", modA, "alpha", alpha, "b", modB, "beta", beta, "out", modC)
	cmd := shell.Command{Name: "ngrammerge", Args: []string{
		"--alpha=" + formatWeight(alpha),
		"--beta=" + formatWeight(beta),
		"--normalize",
		modA,
		modB,
		modC,
	}}
	if _, err := t.runner.Run(ctx, cmd); err != nil {
		// A failed merge must not leave output the cache gate would trust.
		_ = os.Remove(modC)
		return "", "", fmt.Errorf("merging models: %w", err)
	}
	return modC, arpaC, nil
}
