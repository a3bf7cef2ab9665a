// Package staging manages the scratch directories that hold an archive's
// decompressed contents during a read session or a mutation.
//
// Each scratch directory is uniquely named, exclusively owned by the
// operation that allocated it, and removed when that operation finishes.
// CleanStale is the safety net for scratch trees orphaned by crashed or
// careless callers: the CLI runs it at startup against the scratch root.
package staging
