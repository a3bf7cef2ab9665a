package staging

import (
	"fmt"
	"log/slog"
	"os"

	"stash/internal/logging"
)

// scratchPattern names scratch directories so stale ones are recognizable.
const scratchPattern = "scratch-*"

// NewScratchDir allocates a fresh, uniquely-named scratch directory under
// root, creating root if needed.
func NewScratchDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create scratch root %q: %w", root, err)
	}
	dir, err := os.MkdirTemp(root, scratchPattern)
	if err != nil {
		return "", fmt.Errorf("allocate scratch directory: %w", err)
	}
	return dir, nil
}

// Remove deletes a scratch directory recursively. Best-effort: failures are
// logged, never returned, so cleanup can run on every exit path.
func Remove(dir string, logger *slog.Logger) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil && logger != nil {
		logger.Warn("failed to remove scratch directory",
			logging.String("path", dir),
			logging.Error(err),
		)
	}
}
