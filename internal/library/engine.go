package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"stash/internal/archive"
	"stash/internal/fileutil"
	"stash/internal/logging"
	"stash/internal/manifest"
	"stash/internal/naming"
)

// lockRetryDelay is the polling interval while waiting for another writer to
// release an archive's lock.
const lockRetryDelay = 250 * time.Millisecond

// Engine performs all mutations against library archives.
type Engine struct {
	codec  *archive.Codec
	logger *slog.Logger
}

// NewEngine constructs an engine that allocates scratch directories under
// scratchRoot.
func NewEngine(scratchRoot string, logger *slog.Logger) *Engine {
	return &Engine{
		codec:  archive.NewCodec(scratchRoot, logger),
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// AddRequest describes one asset to store during AddBatch.
type AddRequest struct {
	// SourcePath is the absolute path of the file to copy into the archive.
	SourcePath string
	// Name is the display name; blank falls back to the source file name.
	Name string
	Type        string
	Group       string
	Tags        []string
	Description string
	// ThumbnailPath optionally names a custom preview image to copy into the
	// archive. Ignored for image-like types, which thumbnail themselves.
	ThumbnailPath string
}

// BatchResult reports how an AddBatch call went. Skipped requests do not
// abort the batch; the archive is recompressed with whatever succeeded.
type BatchResult struct {
	Requested int
	Added     int
	Skipped   int
}

// lockArchive takes the advisory writer lock for an archive path, blocking
// until it is free or ctx is done. The returned release function is safe to
// call exactly once.
func (e *Engine) lockArchive(ctx context.Context, archivePath string) (func(), error) {
	lock := flock.New(archivePath + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock archive %s: %w", archivePath, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock archive %s: not acquired", archivePath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release archive lock",
				logging.String(logging.FieldArchive, archivePath),
				logging.Error(err),
			)
		}
	}, nil
}

// mutate runs the extract → read manifest → apply → write manifest →
// recompress protocol. A failure at any step before recompression leaves the
// original archive untouched; the scratch directory is removed on every
// path.
func (e *Engine) mutate(ctx context.Context, archivePath string, apply func(scratch string, doc *manifest.Document) error) error {
	unlock, err := e.lockArchive(ctx, archivePath)
	if err != nil {
		return archive.Wrap(ErrWrite, "lock", "", err)
	}
	defer unlock()

	scratch, err := e.codec.Extract(archivePath)
	if err != nil {
		return err
	}
	defer e.codec.RemoveScratch(scratch)

	doc, err := e.codec.ReadManifest(scratch)
	if err != nil {
		return err
	}

	if err := apply(scratch, doc); err != nil {
		return err
	}

	if err := e.codec.WriteManifest(scratch, doc); err != nil {
		return archive.Wrap(ErrWrite, "write manifest", "", err)
	}
	if err := e.codec.Compress(scratch, archivePath); err != nil {
		return archive.Wrap(ErrWrite, "recompress", "", err)
	}
	return nil
}

// CreateLibrary builds an empty library archive at archivePath: fresh
// manifest, empty assets and thumbnails folders, compressed into place.
func (e *Engine) CreateLibrary(ctx context.Context, archivePath, name string) error {
	unlock, err := e.lockArchive(ctx, archivePath)
	if err != nil {
		return archive.Wrap(ErrCreation, "lock", "", err)
	}
	defer unlock()

	scratch, err := e.codec.NewScratch()
	if err != nil {
		return archive.Wrap(ErrCreation, "allocate scratch", "", err)
	}
	defer e.codec.RemoveScratch(scratch)

	for _, dir := range []string{manifest.AssetsRoot, manifest.ThumbnailsRoot} {
		if err := os.MkdirAll(filepath.Join(scratch, dir), 0o755); err != nil {
			return archive.Wrap(ErrCreation, "create storage folders", dir, err)
		}
	}

	doc := manifest.New(strings.TrimSpace(name))
	if err := e.codec.WriteManifest(scratch, doc); err != nil {
		return archive.Wrap(ErrCreation, "write manifest", "", err)
	}
	if err := e.codec.Compress(scratch, archivePath); err != nil {
		return archive.Wrap(ErrCreation, "compress", "", err)
	}

	e.logger.Info("library created",
		logging.String(logging.FieldArchive, archivePath),
		logging.String("name", doc.LibraryName),
	)
	return nil
}

// AddBatch stores the requested assets in the archive. Requests whose source
// file is missing are logged and skipped without aborting the batch; the
// archive is recompressed as long as the protocol itself succeeds.
func (e *Engine) AddBatch(ctx context.Context, archivePath string, requests []AddRequest) (BatchResult, error) {
	result := BatchResult{Requested: len(requests)}

	err := e.mutate(ctx, archivePath, func(scratch string, doc *manifest.Document) error {
		for _, req := range requests {
			if e.addOne(scratch, doc, req) {
				result.Added++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return BatchResult{Requested: len(requests)}, err
	}

	e.logger.Info("batch added",
		logging.String(logging.FieldArchive, archivePath),
		logging.Int("added", result.Added),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

// addOne stores a single asset in the scratch tree and appends its manifest
// entry. Returns false when the request is skipped.
func (e *Engine) addOne(scratch string, doc *manifest.Document, req AddRequest) bool {
	info, err := os.Stat(req.SourcePath)
	if err != nil || info.IsDir() {
		e.logger.Warn("skipping add request: source file unavailable",
			logging.String("source", req.SourcePath),
			logging.Error(err),
		)
		return false
	}

	base := naming.SanitizeFileName(filepath.Base(req.SourcePath))
	if base == "" {
		e.logger.Warn("skipping add request: unusable source name",
			logging.String("source", req.SourcePath),
		)
		return false
	}

	category := naming.CategoryForType(req.Type)
	destDir := filepath.Join(scratch, manifest.AssetsRoot, category)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		e.logger.Warn("skipping add request: category folder",
			logging.String("source", req.SourcePath),
			logging.Error(err),
		)
		return false
	}

	// Probe for a free destination so same-named sources never overwrite
	// each other's content.
	destAbs, err := naming.DisambiguatedPath(destDir, base)
	if err != nil {
		e.logger.Warn("skipping add request: no free destination name",
			logging.String("source", req.SourcePath),
			logging.Error(err),
		)
		return false
	}
	if err := fileutil.CopyFile(req.SourcePath, destAbs); err != nil {
		e.logger.Warn("skipping add request: copy failed",
			logging.String("source", req.SourcePath),
			logging.Error(err),
		)
		return false
	}
	relPath := path.Join(manifest.AssetsRoot, category, filepath.Base(destAbs))

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = base
	}

	entry := manifest.Entry{
		ID:            naming.NewEntryID(),
		Name:          name,
		RelativePath:  relPath,
		Type:          req.Type,
		Group:         req.Group,
		Tags:          req.Tags,
		Description:   req.Description,
		ThumbnailPath: e.resolveThumbnail(scratch, req, relPath),
		FileSize:      info.Size(),
		DateAdded:     manifest.Now(),
	}
	doc.Entries = append(doc.Entries, entry)
	return true
}

// resolveThumbnail implements the self-thumbnail rule: image-like assets
// reference their own content; otherwise a supplied custom thumbnail is
// copied into the thumbnails folder. Failures degrade to "no thumbnail".
func (e *Engine) resolveThumbnail(scratch string, req AddRequest, assetRelPath string) string {
	if naming.IsImageType(req.Type) {
		return assetRelPath
	}

	source := strings.TrimSpace(req.ThumbnailPath)
	if source == "" {
		return ""
	}
	if _, err := os.Stat(source); err != nil {
		e.logger.Warn("custom thumbnail unavailable",
			logging.String("thumbnail", source),
			logging.Error(err),
		)
		return ""
	}

	base := naming.SanitizeFileName(filepath.Base(source))
	thumbDir := filepath.Join(scratch, manifest.ThumbnailsRoot)
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		e.logger.Warn("thumbnail folder unavailable", logging.Error(err))
		return ""
	}
	destAbs, err := naming.DisambiguatedPath(thumbDir, base)
	if err != nil {
		e.logger.Warn("no free thumbnail name", logging.Error(err))
		return ""
	}
	if err := fileutil.CopyFile(source, destAbs); err != nil {
		e.logger.Warn("thumbnail copy failed", logging.Error(err))
		return ""
	}
	return path.Join(manifest.ThumbnailsRoot, filepath.Base(destAbs))
}

// UpdateMetadata overwrites the mutable fields of the entry with the given
// id from the candidate record: name, group, tags, description, and
// thumbnailPath. The id, relativePath, type, fileSize, and dateAdded of the
// stored entry are preserved even when the candidate carries other values.
func (e *Engine) UpdateMetadata(ctx context.Context, archivePath, id string, candidate manifest.Entry) error {
	return e.mutate(ctx, archivePath, func(_ string, doc *manifest.Document) error {
		entry := doc.FindByID(id)
		if entry == nil {
			return archive.Wrap(ErrNotFound, "update metadata", fmt.Sprintf("entry %s", id), nil)
		}
		entry.Name = candidate.Name
		entry.Group = candidate.Group
		entry.Tags = candidate.Tags
		entry.Description = candidate.Description
		entry.ThumbnailPath = candidate.ThumbnailPath
		return nil
	})
}

// RenameEntry changes an entry's display name. The stored content keeps its
// original relativePath; display names and storage paths are deliberately
// independent.
func (e *Engine) RenameEntry(ctx context.Context, archivePath, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return archive.Wrap(ErrInvalidInput, "rename", "new name is empty", nil)
	}
	return e.mutate(ctx, archivePath, func(_ string, doc *manifest.Document) error {
		entry := doc.FindByID(id)
		if entry == nil {
			return archive.Wrap(ErrNotFound, "rename", fmt.Sprintf("entry %s", id), nil)
		}
		entry.Name = newName
		return nil
	})
}

// DeleteEntry removes an entry and its stored content and thumbnail. Missing
// content files are tolerated with a warning.
func (e *Engine) DeleteEntry(ctx context.Context, archivePath, id string) error {
	return e.mutate(ctx, archivePath, func(scratch string, doc *manifest.Document) error {
		entry := doc.FindByID(id)
		if entry == nil {
			return archive.Wrap(ErrNotFound, "delete", fmt.Sprintf("entry %s", id), nil)
		}

		e.removeStoredFile(scratch, entry.RelativePath, "content")
		if entry.ThumbnailPath != "" && entry.ThumbnailPath != entry.RelativePath {
			e.removeStoredFile(scratch, entry.ThumbnailPath, "thumbnail")
		}

		for i := range doc.Entries {
			if doc.Entries[i].ID == id {
				doc.Entries = append(doc.Entries[:i], doc.Entries[i+1:]...)
				break
			}
		}
		return nil
	})
}

func (e *Engine) removeStoredFile(scratch, relPath, kind string) {
	removed, err := e.codec.RemoveFile(scratch, relPath)
	if err != nil {
		e.logger.Warn("failed to remove stored file",
			logging.String("kind", kind),
			logging.String("path", relPath),
			logging.Error(err),
		)
		return
	}
	if !removed {
		e.logger.Warn("stored file already missing",
			logging.String("kind", kind),
			logging.String("path", relPath),
		)
	}
}
