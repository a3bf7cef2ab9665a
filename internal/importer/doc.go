// Package importer copies selected entries out of a loaded library session
// into a destination folder, resolving filename collisions with a numeric
// " (n)" suffix and skipping entries whose stored content is missing.
//
// After a batch it notifies an injected Refresher so the host surface can
// reindex the destination; the CLI host's refresher is a no-op.
package importer
