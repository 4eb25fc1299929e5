package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var rmRecursive bool

var rmCmd = &cobra.Command{
	Use:   "rm <mount-path>",
	Short: "Remove a file or directory",
	Args:  cobra.ExactArgs(1),
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
		if err := m.Rm(ctx, args[0], rmRecursive); err != nil {
			return err
		}

		root, err := a.commitAndSave(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s (root %s)\n", args[0], dag.EncodeCID(root))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "remove a non-empty directory")
	rootCmd.AddCommand(rmCmd)
}
