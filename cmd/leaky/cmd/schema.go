package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var schemaCmd = &cobra.Command{
	Use:   "set-schema <dir-path> [schema-file]",
	Short: "Install or clear a directory's local JSON-Schema, omit schema-file to clear",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var schemaJSON []byte
		if len(args) == 2 {
			schemaJSON, err = os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
		}

		ctx := cmd.Context()
		m, err := a.openMount(ctx)
		if err != nil {
			return err
		}
		if err := m.SetSchema(ctx, args[0], schemaJSON); err != nil {
			return err
		}

		root, err := a.commitAndSave(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "set schema at %s (root %s)\n", args[0], dag.EncodeCID(root))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
