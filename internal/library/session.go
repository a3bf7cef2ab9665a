package library

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"stash/internal/archive"
	"stash/internal/logging"
	"stash/internal/manifest"
)

// Session is a read-only handle on one open extraction of a library archive.
// It owns its scratch directory exclusively until Close.
type Session struct {
	archivePath string
	scratch     string
	doc         *manifest.Document
	codec       *archive.Codec
	logger      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open extracts the archive once, parses the manifest once, and keeps the
// scratch directory alive for the session's lifetime so repeated reads avoid
// repeated extraction. Callers must Close the session.
func (e *Engine) Open(archivePath string) (*Session, error) {
	scratch, err := e.codec.Extract(archivePath)
	if err != nil {
		return nil, err
	}
	doc, err := e.codec.ReadManifest(scratch)
	if err != nil {
		e.codec.RemoveScratch(scratch)
		return nil, err
	}
	return &Session{
		archivePath: archivePath,
		scratch:     scratch,
		doc:         doc,
		codec:       e.codec,
		logger:      logging.NewComponentLogger(e.logger, "session"),
	}, nil
}

// ArchivePath returns the archive this session was opened from.
func (s *Session) ArchivePath() string {
	return s.archivePath
}

// Document returns the parsed manifest. Callers must not mutate it; writes
// go through the Engine.
func (s *Session) Document() *manifest.Document {
	return s.doc
}

// ListAll returns every entry in manifest order.
func (s *Session) ListAll() []manifest.Entry {
	return slices.Clone(s.doc.Entries)
}

// SearchByName returns entries whose name contains term, case-insensitively.
// An empty term means no filter and returns the full list.
func (s *Session) SearchByName(term string) []manifest.Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.ListAll()
	}
	return s.filter(func(e *manifest.Entry) bool {
		return strings.Contains(strings.ToLower(e.Name), term)
	})
}

// FilterByType returns entries whose type matches exactly,
// case-insensitively. An empty type means no filter.
func (s *Session) FilterByType(assetType string) []manifest.Entry {
	assetType = strings.TrimSpace(assetType)
	if assetType == "" {
		return s.ListAll()
	}
	return s.filter(func(e *manifest.Entry) bool {
		return strings.EqualFold(e.Type, assetType)
	})
}

// FilterByGroup returns entries whose group matches exactly,
// case-insensitively. An empty group means no filter.
func (s *Session) FilterByGroup(group string) []manifest.Entry {
	group = strings.TrimSpace(group)
	if group == "" {
		return s.ListAll()
	}
	return s.filter(func(e *manifest.Entry) bool {
		return strings.EqualFold(e.Group, group)
	})
}

// FilterByTag returns entries carrying the tag, case-insensitively. An empty
// tag means no filter.
func (s *Session) FilterByTag(tag string) []manifest.Entry {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return s.ListAll()
	}
	return s.filter(func(e *manifest.Entry) bool {
		for _, t := range e.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

func (s *Session) filter(keep func(*manifest.Entry) bool) []manifest.Entry {
	var out []manifest.Entry
	for i := range s.doc.Entries {
		if keep(&s.doc.Entries[i]) {
			out = append(out, s.doc.Entries[i])
		}
	}
	return out
}

// FetchContent returns the entry's raw content bytes, or nil when the stored
// file is missing. Missing content is not a failure.
func (s *Session) FetchContent(entry manifest.Entry) []byte {
	return s.fetch(entry.RelativePath)
}

// FetchThumbnail returns the entry's thumbnail bytes, or nil when the entry
// has no thumbnail or the file is missing.
func (s *Session) FetchThumbnail(entry manifest.Entry) []byte {
	return s.fetch(entry.ThumbnailPath)
}

func (s *Session) fetch(relPath string) []byte {
	if strings.TrimSpace(relPath) == "" {
		return nil
	}
	data, err := s.codec.ReadFile(s.scratch, relPath)
	if err != nil {
		s.logger.Warn("failed to read stored file",
			logging.String("path", relPath),
			logging.Error(err),
		)
		return nil
	}
	return data
}

// Close releases the session's scratch directory. Safe to call multiple
// times; every call reports the outcome of the single removal.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = os.RemoveAll(s.scratch)
	})
	return s.closeErr
}
