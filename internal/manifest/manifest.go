package manifest

import (
	"strings"
	"time"
)

// FileName is the manifest's name at the archive root.
const FileName = "manifest.json"

// AssetsRoot is the archive folder holding raw asset content, one
// subdirectory per category.
const AssetsRoot = "assets"

// ThumbnailsRoot is the archive folder holding custom preview images.
const ThumbnailsRoot = "thumbnails"

// FormatVersion is the manifest schema version tag. Informational for now;
// there is a single supported schema.
const FormatVersion = "1.0.0"

// Entry is one stored asset's metadata record.
type Entry struct {
	// ID is assigned by the engine at add time and immutable thereafter.
	ID string `json:"id"`
	// Name is the display name. Renaming does not move RelativePath.
	Name string `json:"name"`
	// RelativePath is the forward-slash path of the raw content inside the
	// archive. Owned exclusively by the engine.
	RelativePath string `json:"relativePath"`
	// Type is the free-form category tag supplied at add time.
	Type  string `json:"type"`
	Group string `json:"group"`
	// Tags preserve insertion order; duplicates are permitted.
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	// ThumbnailPath is empty when the entry has no thumbnail.
	ThumbnailPath string `json:"thumbnailPath"`
	// FileSize is captured once at add time and never recomputed.
	FileSize  int64  `json:"fileSize"`
	DateAdded string `json:"dateAdded"`
}

// Document is one archive's manifest.
type Document struct {
	LibraryName      string  `json:"libraryName"`
	Version          string  `json:"version"`
	CreatedDate      string  `json:"createdDate"`
	LastModifiedDate string  `json:"lastModifiedDate"`
	Entries          []Entry `json:"entries"`
}

// Now returns the current time in the manifest's timestamp format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// New builds an empty document for a freshly created library.
func New(libraryName string) *Document {
	now := Now()
	return &Document{
		LibraryName:      libraryName,
		Version:          FormatVersion,
		CreatedDate:      now,
		LastModifiedDate: now,
		Entries:          []Entry{},
	}
}

// FindByID returns a pointer to the entry with the given id, or nil.
func (d *Document) FindByID(id string) *Entry {
	for i := range d.Entries {
		if d.Entries[i].ID == id {
			return &d.Entries[i]
		}
	}
	return nil
}

// EntryCount returns the number of entries.
func (d *Document) EntryCount() int {
	return len(d.Entries)
}

// UniqueTypes returns the distinct non-empty type tags across all entries,
// in first-seen order.
func (d *Document) UniqueTypes() []string {
	return d.uniqueValues(func(e *Entry) []string { return []string{e.Type} })
}

// UniqueGroups returns the distinct non-empty groups across all entries,
// in first-seen order.
func (d *Document) UniqueGroups() []string {
	return d.uniqueValues(func(e *Entry) []string { return []string{e.Group} })
}

// UniqueTags returns the distinct non-empty tags across all entries, in
// first-seen order.
func (d *Document) UniqueTags() []string {
	return d.uniqueValues(func(e *Entry) []string { return e.Tags })
}

func (d *Document) uniqueValues(values func(*Entry) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range d.Entries {
		for _, v := range values(&d.Entries[i]) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
