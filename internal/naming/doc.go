// Package naming owns the pure string and path helpers shared by the library
// engine and the import engine: filename sanitization, the asset-type to
// category-folder mapping, collision-safe destination naming, entry id
// generation, and byte-size formatting.
package naming
