package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecentCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			libs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, libs)
			}
			if len(libs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No libraries opened yet")
				return nil
			}

			rows := make([][]string, 0, len(libs))
			for _, lib := range libs {
				rows = append(rows, []string{
					lib.Name,
					lib.Path,
					lib.LastOpened.Local().Format("2006-01-02 15:04"),
					strconv.FormatInt(lib.OpenCount, 10),
				})
			}
			headers := []string{"NAME", "PATH", "LAST OPENED", "OPENS"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of libraries to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the list as JSON")
	return cmd
}
