package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/history"
	"github.com/systemshift/leaky/internal/sync"
)

var (
	logLimit       int
	logRelatedPath string
	logRelatedLim  int
	logWindow      time.Duration
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the manifest chain, or files related to --related <path>",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		baseline, err := sync.LoadBaseline(workDir)
		if err != nil {
			return err
		}
		if baseline.HeadManifest == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "(no history: never pushed)")
			return nil
		}
		head := *baseline.HeadManifest

		if logRelatedPath != "" {
			rel, err := history.BuildRelatedness(ctx, a.client, head, logLimit, logWindow)
			if err != nil {
				return err
			}
			for _, p := range rel.Related(logRelatedPath, logRelatedLim) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}

		manifests, err := history.Walk(ctx, a.client, head, logLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range manifests {
			c, _, encErr := m.Encode()
			if encErr != nil {
				return encErr
			}
			fmt.Fprintf(out, "%s  data_root=%s  %s\n", dag.EncodeCID(c), dag.EncodeCID(m.DataRoot), m.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 0, "maximum manifests to walk (0 = unbounded)")
	logCmd.Flags().StringVar(&logRelatedPath, "related", "", "show paths related to this path instead of the manifest chain")
	logCmd.Flags().IntVar(&logRelatedLim, "related-limit", 10, "maximum related paths to show")
	logCmd.Flags().DurationVar(&logWindow, "window", time.Hour, "co-change time window for --related")
	rootCmd.AddCommand(logCmd)
}
