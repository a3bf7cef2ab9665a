// Package recent persists the CLI host's small session preferences in
// SQLite: which libraries were opened recently and the last import
// destination.
//
// This state belongs to the host surface, not to the library container
// engine; losing it costs convenience, never data. Schema changes bump the
// version in store.go and users delete the database to adopt the new schema.
package recent
