package archive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArchive marks a path that does not exist or is not a
	// recognized library archive.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrMissingManifest marks an archive that lacks manifest.json.
	ErrMissingManifest = errors.New("missing manifest")
	// ErrParse marks a manifest that is present but malformed.
	ErrParse = errors.New("manifest parse error")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification via errors.Is. The
// marker should be one of the exported sentinel errors of this package or of
// the library package.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "archive failure"
	}
	return strings.Join(parts, ": ")
}
