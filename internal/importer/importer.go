package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"stash/internal/library"
	"stash/internal/logging"
	"stash/internal/manifest"
	"stash/internal/naming"
)

// Refresher is notified after an import batch so the host can reindex the
// destination folder. The editor surface refreshes its asset database; the
// CLI uses NopRefresher.
type Refresher interface {
	Refresh(ctx context.Context, destination string) error
}

// NopRefresher performs no refresh.
type NopRefresher struct{}

func (NopRefresher) Refresh(context.Context, string) error { return nil }

// Result reports an import batch's outcome.
type Result struct {
	Imported int
	Total    int
}

// Importer copies entries out of library sessions.
type Importer struct {
	refresher Refresher
	logger    *slog.Logger
}

// New constructs an importer. A nil refresher behaves like NopRefresher.
func New(refresher Refresher, logger *slog.Logger) *Importer {
	if refresher == nil {
		refresher = NopRefresher{}
	}
	return &Importer{
		refresher: refresher,
		logger:    logging.NewComponentLogger(logger, "importer"),
	}
}

// ImportSelected copies each entry's content into destination. Entries with
// missing content or an unresolvable destination name are counted and
// skipped; they never abort the batch.
func (i *Importer) ImportSelected(ctx context.Context, sess *library.Session, entries []manifest.Entry, destination string) (Result, error) {
	result := Result{Total: len(entries)}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return result, fmt.Errorf("create destination %q: %w", destination, err)
	}

	for _, entry := range entries {
		data := sess.FetchContent(entry)
		if data == nil {
			i.logger.Warn("skipping entry: content missing from archive",
				logging.String(logging.FieldEntryID, entry.ID),
				logging.String("name", entry.Name),
			)
			continue
		}

		base := path.Base(entry.RelativePath)
		target, err := naming.DisambiguatedPath(destination, base)
		if err != nil {
			i.logger.Warn("skipping entry: no free destination name",
				logging.String(logging.FieldEntryID, entry.ID),
				logging.Error(err),
			)
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			i.logger.Warn("skipping entry: write failed",
				logging.String(logging.FieldEntryID, entry.ID),
				logging.Error(err),
			)
			continue
		}
		result.Imported++
		i.logger.Debug("entry imported",
			logging.String(logging.FieldEntryID, entry.ID),
			logging.String("target", filepath.Base(target)),
		)
	}

	if err := i.refresher.Refresh(ctx, destination); err != nil {
		i.logger.Warn("destination refresh failed", logging.Error(err))
	}

	i.logger.Info("import completed",
		logging.String("destination", destination),
		logging.Int("imported", result.Imported),
		logging.Int("total", result.Total),
	)
	return result, nil
}
