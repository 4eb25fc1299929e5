package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Stage the working directory, commit, and compare-and-swap the remote head",
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

		res, err := a.sess.Stage(ctx, m, a.cfg.Sync.Ignore)
		if err != nil {
			return err
		}
		for _, op := range res.Ops {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", op.Kind, op.Path)
		}

		head, err := a.sess.Push(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pushed head %s\n", dag.EncodeCID(head))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
