package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/config"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create <archive>",
		Short: "Create an empty library archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve archive path: %w", err)
			}

			libraryName := strings.TrimSpace(name)
			if libraryName == "" {
				base := filepath.Base(archivePath)
				libraryName = strings.TrimSuffix(base, filepath.Ext(base))
			}

			eng, err := ctx.engine()
			if err != nil {
				return err
			}
			if err := eng.CreateLibrary(cmd.Context(), archivePath, libraryName); err != nil {
				return err
			}

			ctx.rememberLibrary(cmd.Context(), archivePath, libraryName)
			printOK(cmd, "Created library %q at %s", libraryName, archivePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Library display name (defaults to the file name)")
	return cmd
}
