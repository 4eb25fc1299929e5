package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var diffCmd = &cobra.Command{
	Use:   "diff <against-cid>",
	Short: "Show added/removed/modified paths relative to another committed root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		against, err := dag.DecodeCID(args[0])
		if err != nil {
			return fmt.Errorf("decode cid: %w", err)
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
		res, err := m.Diff(ctx, against)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range res.Added {
			fmt.Fprintf(out, "+ %s\n", p)
		}
		for _, p := range res.Removed {
			fmt.Fprintf(out, "- %s\n", p)
		}
		for _, p := range res.Modified {
			fmt.Fprintf(out, "~ %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
