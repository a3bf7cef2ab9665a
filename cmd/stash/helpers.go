package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/library"
	"stash/internal/manifest"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func printOK(cmd *cobra.Command, format string, args ...any) {
	printColored(cmd, ansiGreen, format, args...)
}

func printWarn(cmd *cobra.Command, format string, args ...any) {
	printColored(cmd, ansiYellow, format, args...)
}

func printColored(cmd *cobra.Command, color, format string, args ...any) {
	out := cmd.OutOrStdout()
	line := fmt.Sprintf(format, args...)
	if shouldColorize(out) {
		line = color + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

// shortID trims an entry id for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findEntry resolves an entry reference: a full id first, then a unique id
// prefix so users can paste the short form shown by `stash ls`.
func findEntry(sess *library.Session, ref string) (*manifest.Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("entry id is required")
	}

	if entry := sess.Document().FindByID(ref); entry != nil {
		return entry, nil
	}

	var match *manifest.Entry
	entries := sess.Document().Entries
	for i := range entries {
		if strings.HasPrefix(entries[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("entry id prefix %q is ambiguous", ref)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no entry with id %q", ref)
	}
	return match, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
