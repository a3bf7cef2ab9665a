package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete an entry and its stored file",
		Args:    cobra.ExactArgs(1),
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
			if !force {
				return fmt.Errorf("deleting %s removes the stored file permanently; re-run with --force", shortID(id))
			}

			if err := eng.DeleteEntry(cmd.Context(), archivePath, id); err != nil {
				return err
			}

			ctx.rememberLibrary(cmd.Context(), archivePath, "")
			printOK(cmd, "Deleted %s", shortID(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}
