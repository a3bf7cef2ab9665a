package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/library"
	"stash/internal/manifest"
	"stash/internal/naming"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var typeFilter string
	var groupFilter string
	var tagFilter string
	var search string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List library entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *library.Session) error {
				entries := selectEntries(sess, search, typeFilter, groupFilter, tagFilter)

				if asJSON {
					return writeJSON(cmd, entries)
				}

				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No entries match")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						shortID(entry.ID),
						entry.Name,
						entry.Type,
						entry.Group,
						joinTags(entry.Tags),
						naming.FormatBytes(entry.FileSize),
					})
				}
				headers := []string{"ID", "NAME", "TYPE", "GROUP", "TAGS", "SIZE"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries in %s\n", sess.Document().EntryCount(), sess.Document().LibraryName)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Only entries of this type")
	cmd.Flags().StringVarP(&groupFilter, "group", "g", "", "Only entries in this group")
	cmd.Flags().StringVar(&tagFilter, "tag", "", "Only entries carrying this tag")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Name substring search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")
	return cmd
}

// selectEntries narrows the session's entries through the search term first,
// then each exact filter in turn. Blank filters match everything.
func selectEntries(sess *library.Session, search, typeFilter, groupFilter, tagFilter string) []manifest.Entry {
	entries := sess.SearchByName(search)
	entries = narrow(entries, typeFilter, func(e *manifest.Entry) string { return e.Type })
	entries = narrow(entries, groupFilter, func(e *manifest.Entry) string { return e.Group })
	if strings.TrimSpace(tagFilter) != "" {
		kept := entries[:0:0]
		for _, entry := range entries {
			for _, tag := range entry.Tags {
				if strings.EqualFold(tag, tagFilter) {
					kept = append(kept, entry)
					break
				}
			}
		}
		entries = kept
	}
	return entries
}

func narrow(entries []manifest.Entry, want string, value func(*manifest.Entry) string) []manifest.Entry {
	if strings.TrimSpace(want) == "" {
		return entries
	}
	kept := entries[:0:0]
	for i := range entries {
		if strings.EqualFold(value(&entries[i]), want) {
			kept = append(kept, entries[i])
		}
	}
	return kept
}
