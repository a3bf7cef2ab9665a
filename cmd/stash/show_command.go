package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/config"
	"stash/internal/library"
	"stash/internal/naming"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var contentOut string
	var thumbnailOut string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display one entry in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *library.Session) error {
				entry, err := findEntry(sess, args[0])
				if err != nil {
					return err
				}

				if contentOut != "" {
					if err := saveBlob(sess.FetchContent(*entry), contentOut, "content"); err != nil {
						return err
					}
					printOK(cmd, "Wrote content to %s", contentOut)
				}
				if thumbnailOut != "" {
					if err := saveBlob(sess.FetchThumbnail(*entry), thumbnailOut, "thumbnail"); err != nil {
						return err
					}
					printOK(cmd, "Wrote thumbnail to %s", thumbnailOut)
				}
				if contentOut != "" || thumbnailOut != "" {
					return nil
				}

				if asJSON {
					return writeJSON(cmd, entry)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", entry.ID)
				fmt.Fprintf(out, "Name:        %s\n", entry.Name)
				fmt.Fprintf(out, "Type:        %s\n", entry.Type)
				fmt.Fprintf(out, "Group:       %s\n", valueOrDash(entry.Group))
				fmt.Fprintf(out, "Tags:        %s\n", valueOrDash(joinTags(entry.Tags)))
				fmt.Fprintf(out, "Description: %s\n", valueOrDash(entry.Description))
				fmt.Fprintf(out, "Path:        %s\n", entry.RelativePath)
				fmt.Fprintf(out, "Thumbnail:   %s\n", valueOrDash(entry.ThumbnailPath))
				fmt.Fprintf(out, "Size:        %s\n", naming.FormatBytes(entry.FileSize))
				fmt.Fprintf(out, "Added:       %s\n", entry.DateAdded)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the entry as JSON")
	cmd.Flags().StringVar(&contentOut, "out", "", "Write the entry's raw content to this file")
	cmd.Flags().StringVar(&thumbnailOut, "thumbnail-out", "", "Write the entry's thumbnail to this file")
	return cmd
}

func saveBlob(data []byte, target, kind string) error {
	if data == nil {
		return fmt.Errorf("entry has no %s stored", kind)
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
