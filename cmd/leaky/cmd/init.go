package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/sync"
)

var defaultConfigYAML = `block_store:
  type: kubo
  kubo_api: http://localhost:5001/api/v0
remote:
  url: ""
sync:
  ignore: []
logging:
  level: info
  format: console
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .leaky working directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		leakyDir := filepath.Join(workDir, ".leaky")
		if _, err := os.Stat(leakyDir); err == nil {
			return fmt.Errorf("already initialized: %s", leakyDir)
		}
		if err := os.MkdirAll(leakyDir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(leakyDir, "config.yaml"), []byte(defaultConfigYAML), 0o644); err != nil {
			return err
		}
		if err := (&sync.Baseline{}).Save(workDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized empty leaky repository in %s\n", leakyDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
