package library

import "errors"

var (
	// ErrNotFound marks an entry id absent from the manifest.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidInput marks an empty or unusable required argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrWrite marks an I/O failure during manifest write or recompression.
	ErrWrite = errors.New("archive write error")
	// ErrCreation marks a failure while building a new library archive.
	ErrCreation = errors.New("library creation error")
)
