package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the remote head and adopt it as the local baseline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		head, root, err := a.sess.Pull(cmd.Context())
		if err != nil {
			return err
		}
		if head == dag.Undef {
			fmt.Fprintln(cmd.OutOrStdout(), "remote has no history yet")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pulled head %s (root %s)\n", dag.EncodeCID(head), dag.EncodeCID(root))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
