package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Flush any pending dirty state and print the current local root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		m, err := a.openMount(ctx)
		if err != nil {
			return err
		}
		root, err := a.commitAndSave(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dag.EncodeCID(root))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
