package archive

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"stash/internal/fileutil"
	"stash/internal/logging"
	"stash/internal/manifest"
	"stash/internal/staging"
)

// Codec converts between a library archive file and a scratch directory
// holding its decompressed contents.
type Codec struct {
	scratchRoot string
	logger      *slog.Logger
}

// NewCodec constructs a codec allocating scratch directories under scratchRoot.
func NewCodec(scratchRoot string, logger *slog.Logger) *Codec {
	return &Codec{
		scratchRoot: scratchRoot,
		logger:      logging.NewComponentLogger(logger, "archive"),
	}
}

// NewScratch allocates an empty scratch directory under the codec's scratch
// root, for building a library from nothing rather than from an archive.
func (c *Codec) NewScratch() (string, error) {
	return staging.NewScratchDir(c.scratchRoot)
}

// Extract fully decompresses the archive into a freshly allocated scratch
// directory and returns its path. The source archive is never mutated. The
// caller owns the returned directory and releases it with RemoveScratch.
func (c *Codec) Extract(archivePath string) (string, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return "", Wrap(ErrInvalidArchive, "extract", fmt.Sprintf("no archive at %s", archivePath), err)
	}
	if info.IsDir() {
		return "", Wrap(ErrInvalidArchive, "extract", fmt.Sprintf("%s is a directory", archivePath), nil)
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", Wrap(ErrInvalidArchive, "extract", fmt.Sprintf("%s is not a readable archive", archivePath), err)
	}
	defer reader.Close()

	scratch, err := staging.NewScratchDir(c.scratchRoot)
	if err != nil {
		return "", err
	}

	for _, file := range reader.File {
		if err := extractFile(scratch, file); err != nil {
			staging.Remove(scratch, c.logger)
			return "", Wrap(ErrInvalidArchive, "extract", fmt.Sprintf("entry %s", file.Name), err)
		}
	}

	c.logger.Debug("archive extracted",
		logging.String(logging.FieldArchive, archivePath),
		logging.String("scratch", scratch),
		logging.Int("files", len(reader.File)),
	)
	return scratch, nil
}

func extractFile(scratch string, file *zip.File) error {
	target, err := scratchJoin(scratch, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// scratchJoin resolves an archive-relative forward-slash name inside the
// scratch directory, rejecting names that would escape it.
func scratchJoin(scratch, name string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(name, "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("entry name %q escapes archive root", name)
	}
	return filepath.Join(scratch, filepath.FromSlash(cleaned)), nil
}

// Compress produces a fresh archive at archivePath whose root equals the
// scratch directory's contents. The archive is written to a temp path next
// to the target and renamed into place, replacing any existing file.
func (c *Codec) Compress(scratchDir, archivePath string) error {
	partial := archivePath + ".partial"

	if err := writeZip(scratchDir, partial); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("compress %s: %w", archivePath, err)
	}
	if err := os.Rename(partial, archivePath); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("publish %s: %w", archivePath, err)
	}

	c.logger.Debug("archive compressed",
		logging.String(logging.FieldArchive, archivePath),
		logging.String("scratch", scratchDir),
	)
	return nil
}

func writeZip(scratchDir, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(scratchDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(scratchDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			// Keep empty category folders in the archive layout.
			_, err := zw.Create(name + "/")
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: info.ModTime()}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}

// ReadManifest reads and parses the manifest file from the scratch root.
func (c *Codec) ReadManifest(scratchDir string) (*manifest.Document, error) {
	manifestPath := filepath.Join(scratchDir, manifest.FileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Wrap(ErrMissingManifest, "read manifest", "archive has no manifest.json", err)
		}
		return nil, Wrap(ErrParse, "read manifest", "manifest unreadable", err)
	}

	var doc manifest.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Wrap(ErrParse, "read manifest", "manifest is malformed", err)
	}
	return &doc, nil
}

// WriteManifest stamps the document's last-modified date to now, serializes
// it pretty-printed, and overwrites the manifest file in the scratch root.
func (c *Codec) WriteManifest(scratchDir string, doc *manifest.Document) error {
	doc.LastModifiedDate = manifest.Now()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(scratchDir, manifest.FileName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadFile returns the bytes of an archive-relative file within the scratch
// tree, or nil (without error) when the file is absent. Callers treat nil as
// "missing asset content", not a failure.
func (c *Codec) ReadFile(scratchDir, relativePath string) ([]byte, error) {
	if strings.TrimSpace(relativePath) == "" {
		return nil, nil
	}
	target, err := scratchJoin(scratchDir, relativePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// WriteFile copies the file at sourcePath to an archive-relative destination
// within the scratch tree, creating intermediate directories as needed and
// overwriting any existing file.
func (c *Codec) WriteFile(scratchDir, sourcePath, relativePath string) error {
	target, err := scratchJoin(scratchDir, relativePath)
	if err != nil {
		return err
	}
	return fileutil.CopyFile(sourcePath, target)
}

// RemoveFile deletes an archive-relative file from the scratch tree.
// A missing file is tolerated and reported via the returned bool.
func (c *Codec) RemoveFile(scratchDir, relativePath string) (bool, error) {
	target, err := scratchJoin(scratchDir, relativePath)
	if err != nil {
		return false, err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveScratch deletes a scratch directory. Best-effort; failures are
// logged, never returned.
func (c *Codec) RemoveScratch(scratchDir string) {
	staging.Remove(scratchDir, c.logger)
}
