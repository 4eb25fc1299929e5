package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/sync"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the working directory and push on every settled burst of changes",
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

		w, err := sync.NewWatcher(a.sess, m, a.cfg.Sync.Ignore, a.cfg.Sync.WatchDebounce, a.log)
		if err != nil {
			return err
		}
		w.Start(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", workDir)

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		<-done

		w.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
