package main

import (
	"errors"

	"github.com/spf13/cobra"

	"stash/internal/manifest"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	var name string
	var group string
	var tags []string
	var description string
	var thumbnail string
	var clearThumbnail bool

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update an entry's metadata",
		Long: `Update the mutable metadata of one entry.

Only the fields named by flags change; everything else keeps its current
value. The stored file, its path inside the archive, and the recorded type
and size never change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("group") && !flags.Changed("tag") &&
				!flags.Changed("description") && !flags.Changed("thumbnail") && !clearThumbnail {
				return errors.New("nothing to update; pass at least one metadata flag")
			}

			archivePath, err := ctx.resolveLibrary(cmd.Context())
			if err != nil {
				return err
			}
			eng, err := ctx.engine()
			if err != nil {
				return err
			}

			// Read the current values first so unchanged fields carry over.
			var candidate manifest.Entry
			sess, err := eng.Open(archivePath)
			if err != nil {
				return err
			}
			entry, findErr := findEntry(sess, args[0])
			if findErr == nil {
				candidate = *entry
			}
			closeErr := sess.Close()
			if findErr != nil {
				return findErr
			}
			if closeErr != nil {
				return closeErr
			}

			if flags.Changed("name") {
				candidate.Name = name
			}
			if flags.Changed("group") {
				candidate.Group = group
			}
			if flags.Changed("tag") {
				candidate.Tags = tags
			}
			if flags.Changed("description") {
				candidate.Description = description
			}
			if flags.Changed("thumbnail") {
				candidate.ThumbnailPath = thumbnail
			}
			if clearThumbnail {
				candidate.ThumbnailPath = ""
			}

			if err := eng.UpdateMetadata(cmd.Context(), archivePath, candidate.ID, candidate); err != nil {
				return err
			}

			ctx.rememberLibrary(cmd.Context(), archivePath, "")
			printOK(cmd, "Updated %s", candidate.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New display name")
	cmd.Flags().StringVarP(&group, "group", "g", "", "New group")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replacement tag set (repeatable)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "New thumbnail path inside the archive")
	cmd.Flags().BoolVar(&clearThumbnail, "clear-thumbnail", false, "Remove the thumbnail reference")
	return cmd
}
