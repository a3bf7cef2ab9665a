package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stash/internal/config"
	"stash/internal/library"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var assetType string
	var name string
	var group string
	var tags []string
	var description string
	var thumbnail string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add files to the library",
		Long: `Add one or more files to the library as a single batch.

Every file in the batch shares the supplied type, group, tags, and
description. A per-file display name only makes sense for single-file
batches; --name is rejected when more than one file is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) != "" && len(args) > 1 {
				return fmt.Errorf("--name applies to a single file; got %d files", len(args))
			}

			archivePath, err := ctx.resolveLibrary(cmd.Context())
			if err != nil {
				return err
			}

			requests := make([]library.AddRequest, 0, len(args))
			for _, arg := range args {
				source, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve source path %q: %w", arg, err)
				}
				requests = append(requests, library.AddRequest{
					SourcePath:    source,
					Name:          strings.TrimSpace(name),
					Type:          assetType,
					Group:         group,
					Tags:          tags,
					Description:   description,
					ThumbnailPath: thumbnail,
				})
			}

			eng, err := ctx.engine()
			if err != nil {
				return err
			}
			result, err := eng.AddBatch(cmd.Context(), archivePath, requests)
			if err != nil {
				return err
			}

			ctx.rememberLibrary(cmd.Context(), archivePath, "")
			if result.Skipped > 0 {
				printWarn(cmd, "Added %d of %d files (%d skipped)", result.Added, result.Requested, result.Skipped)
				return nil
			}
			printOK(cmd, "Added %d files to %s", result.Added, archivePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&assetType, "type", "t", "", "Asset type (texture, script, prefab, ...)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (single-file batches only)")
	cmd.Flags().StringVarP(&group, "group", "g", "", "Group the assets belong to")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description for the assets")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image to attach")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
