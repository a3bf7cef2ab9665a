// Package archive moves bytes between one compressed library file and one
// scratch directory tree, and mediates manifest (de)serialization.
//
// The archive format is a zip whose root holds manifest.json plus the
// assets/ and thumbnails/ trees. Extraction always targets a freshly
// allocated scratch directory and never mutates the source archive;
// compression writes to a temp path beside the target and renames over it so
// an interrupted write cannot leave a truncated archive at the published
// path.
package archive
