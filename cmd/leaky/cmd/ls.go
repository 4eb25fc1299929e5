package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List the entries of a directory (default: /)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}

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
		entries, err := m.Ls(ctx, path)
		if err != nil {
			return err
		}

		for _, e := range entries {
			mark := ""
			if e.Kind == dag.LinkDir {
				mark = "/"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", e.Name, mark)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
