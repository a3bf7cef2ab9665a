// Package manifest defines the library document stored inside an archive:
// library-level fields plus the ordered collection of entry records, with
// derived queries over them.
//
// The package is a dumb container by design. It performs no I/O and enforces
// no invariants beyond what the library engine imposes; id uniqueness and
// relative-path ownership are the engine's responsibility. Timestamps are
// ISO-8601 UTC strings so the serialized form round-trips exactly.
package manifest
