package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// NewEntryID generates an opaque unique identifier for a manifest entry.
func NewEntryID() string {
	return uuid.NewString()
}

// FormatBytes renders a byte count for display (e.g. "2.4 MB").
func FormatBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// categoryOther is the catch-all storage folder for unmapped asset types.
const categoryOther = "other"

// categories maps a lowercased type family to its storage folder. Families
// are matched by substring so host-specific tags like "Texture2D" or
// "AudioClip" land in the right folder without an exhaustive table.
var categories = []struct {
	family string
	folder string
}{
	{"texture", "textures"},
	{"sprite", "textures"},
	{"material", "materials"},
	{"shader", "shaders"},
	{"script", "scripts"},
	{"prefab", "prefabs"},
	{"model", "models"},
	{"mesh", "models"},
	{"audio", "audio"},
	{"sound", "audio"},
	{"scene", "scenes"},
	{"animation", "animations"},
	{"anim", "animations"},
	{"font", "fonts"},
}

// CategoryForType derives the storage folder for an asset type tag.
// Matching is case-insensitive; unmapped types fall into "other".
func CategoryForType(assetType string) string {
	tag := strings.ToLower(strings.TrimSpace(assetType))
	if tag == "" {
		return categoryOther
	}
	for _, c := range categories {
		if strings.Contains(tag, c.family) {
			return c.folder
		}
	}
	return categoryOther
}

// IsImageType reports whether an asset type tag denotes image-like content,
// meaning the stored asset can serve as its own thumbnail.
func IsImageType(assetType string) bool {
	return CategoryForType(assetType) == "textures"
}

// maxNameAttempts bounds the collision-resolution loop. Exhaustion means the
// destination directory holds ten thousand same-named files; treat as fatal
// for that one file.
const maxNameAttempts = 10000

// DisambiguatedPath returns a path in dir for fileName that does not collide
// with an existing file. The first free candidate among "name.ext",
// "name (1).ext", "name (2).ext", ... is returned.
func DisambiguatedPath(dir, fileName string) (string, error) {
	candidate := filepath.Join(dir, fileName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		return "", err
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	for n := 1; n < maxNameAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted name slots for %s in %s", fileName, dir)
}
