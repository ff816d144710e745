// Package gate implements the skip-if-exists cache decision applied at
// every file-producing pipeline stage.
package gate

import (
	"log/slog"
	"os"
)

// Decision is the outcome of a cache check.
type Decision int

const (
	// Produce means the stage must (re)generate its output.
	Produce Decision = iota
	// Skip means the output already exists and can be reused.
	Skip
)

// Check returns Skip iff path exists and force is false. The check runs
// independently at each stage boundary so a partially completed earlier
// run resumes exactly where it left off.
func Check(path string, force bool, logger *slog.Logger) Decision {
	if force {
		return Produce
	}
	if _, err := os.Stat(path); err != nil {
		return Produce
	}
	if logger != nil {
		logger.Info("output exists, skipping", "path", path)
	}
	return Skip
}
