// Package config loads, normalizes, and validates the stash configuration
// file.
//
// Configuration is TOML with two sections: [paths] for the scratch, log, and
// state directories plus default library/import locations, and [logging] for
// output format and level. Load resolves ~ and relative paths to absolute
// ones so downstream code never re-expands them. A commented sample config is
// embedded and written by `stash config init`.
package config
