package main

import (
	"github.com/spf13/cobra"

	"stash/internal/library"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename an entry",
		Long: `Change an entry's display name.

Renaming only touches the manifest; the stored file keeps its path inside
the archive, so references recorded at add time stay valid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, err := ctx.resolveLibrary(cmd.Context())
			if err != nil {
				return err
			}
			eng, err := ctx.engine()
			if err != nil {
				return err
			}

			id, err := resolveEntryID(eng, archivePath, args[0])
			if err != nil {
				return err
			}
			if err := eng.RenameEntry(cmd.Context(), archivePath, id, args[1]); err != nil {
				return err
			}

			ctx.rememberLibrary(cmd.Context(), archivePath, "")
			printOK(cmd, "Renamed %s to %q", shortID(id), args[1])
			return nil
		},
	}
}

// resolveEntryID expands a short id reference through a read-only session
// before the mutation takes the write lock.
func resolveEntryID(eng *library.Engine, archivePath, ref string) (string, error) {
	sess, err := eng.Open(archivePath)
	if err != nil {
		return "", err
	}
	entry, findErr := findEntry(sess, ref)
	closeErr := sess.Close()
	if findErr != nil {
		return "", findErr
	}
	if closeErr != nil {
		return "", closeErr
	}
	return entry.ID, nil
}
