// Package library is the container engine for stash asset libraries.
//
// Every mutation (create, add-batch, update-metadata, rename, delete) runs
// the same protocol: extract the archive to a scratch directory, load the
// manifest, apply the change, write the manifest back, recompress over the
// original archive path, and remove the scratch directory. Compression is
// the last step, so a failure anywhere earlier leaves the original archive
// untouched; scratch cleanup runs unconditionally. A per-archive advisory
// file lock serializes writers.
//
// The read path is Session: one extraction kept alive for repeated queries
// and content fetches until Close.
package library
