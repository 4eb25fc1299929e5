// Package cmd implements the leaky CLI: thin wiring over internal/mount,
// internal/history, and internal/sync. No behavior lives here that those
// packages don't already expose and test independently.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/config"
	"github.com/systemshift/leaky/internal/history"
	"github.com/systemshift/leaky/internal/sync"
)

var workDir string

var rootCmd = &cobra.Command{
	Use:   "leaky",
	Short: "A content-addressable content management system",
	Long: `leaky manages a tree of content-addressed files and metadata,
versioned through a manifest chain and synced against a remote head
with compare-and-swap semantics.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", ".", "working directory (contains .leaky/)")
}

// Execute runs the CLI, exiting the process with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the pieces every subcommand needs, built once from config.
type app struct {
	cfg    *config.Config
	client block.Client
	remote history.RemoteHead
	log    *zap.Logger
	sess   *sync.Session
}

func newApp() (*app, error) {
	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, err
	}
	client, err := block.New(cfg.BlockStore.Type, cfg.BlockStore.KuboAPI)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return nil, err
	}

	var remote history.RemoteHead
	if cfg.Remote.URL != "" {
		var creds *string
		if cfg.Remote.Credentials != "" {
			creds = &cfg.Remote.Credentials
		}
		remote = history.NewHTTPRemoteHead(cfg.Remote.URL, creds)
	} else {
		remote = history.NewMemRemoteHead()
	}

	return &app{
		cfg:    cfg,
		client: client,
		remote: remote,
		log:    logger,
		sess:   &sync.Session{Client: client, Remote: remote, WorkDir: workDir},
	}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
}
