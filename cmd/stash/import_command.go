package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/config"
	"stash/internal/importer"
	"stash/internal/library"
	"stash/internal/manifest"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "import <id>...",
		Short: "Copy entries into a project directory",
		Long: `Copy the raw content of selected entries into a destination directory.

Files land under their stored base names; when a name is already taken in
the destination a numbered variant is chosen instead of overwriting. The
destination defaults to the last one used, then to import_dir from config.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := resolveImportDestination(cmd, ctx, destination)
			if err != nil {
				return err
			}

			return ctx.withSession(cmd, func(sess *library.Session) error {
				entries := make([]manifest.Entry, 0, len(args))
				for _, ref := range args {
					entry, err := findEntry(sess, ref)
					if err != nil {
						return err
					}
					entries = append(entries, *entry)
				}

				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				imp := importer.New(importer.NopRefresher{}, logger)
				result, err := imp.ImportSelected(cmd.Context(), sess, entries, dest)
				if err != nil {
					return err
				}

				rememberImportDestination(cmd, ctx, dest)

				if result.Imported < result.Total {
					printWarn(cmd, "Imported %d of %d entries into %s", result.Imported, result.Total, dest)
					return nil
				}
				printOK(cmd, "Imported %d entries into %s", result.Imported, dest)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&destination, "dest", "D", "", "Destination directory (defaults to the last used, then import_dir)")
	return cmd
}

func resolveImportDestination(cmd *cobra.Command, ctx *commandContext, flagValue string) (string, error) {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return config.ExpandPath(trimmed)
	}

	store, err := ctx.openStore()
	if err == nil {
		last, lastErr := store.LastImportDir(cmd.Context())
		closeErr := store.Close()
		if lastErr == nil && closeErr == nil && last != "" {
			return last, nil
		}
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.ImportDir != "" {
		return cfg.Paths.ImportDir, nil
	}
	return "", errors.New("no destination; pass --dest or set import_dir in config")
}

func rememberImportDestination(cmd *cobra.Command, ctx *commandContext, dest string) {
	store, err := ctx.openStore()
	if err != nil {
		ctx.warnPreferences(err)
		return
	}
	defer store.Close()
	if err := store.SetLastImportDir(cmd.Context(), dest); err != nil {
		ctx.warnPreferences(fmt.Errorf("record import destination: %w", err))
	}
}
