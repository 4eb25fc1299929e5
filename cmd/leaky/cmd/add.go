package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var addMetadataJSON string

var addCmd = &cobra.Command{
	Use:   "add <mount-path> <local-file>",
	Short: "Add or overwrite a file at a mount path, reading its bytes from local-file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountPath, localFile := args[0], args[1]

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		metadata, err := parseMetadataFlag(addMetadataJSON)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(localFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", localFile, err)
		}

		ctx := cmd.Context()
		dataCID, err := a.client.Put(ctx, dag.RawCodec, data)
		if err != nil {
			return err
		}

		m, err := a.openMount(ctx)
		if err != nil {
			return err
		}
		if err := m.Add(ctx, mountPath, dataCID, metadata); err != nil {
			return err
		}

		root, err := a.commitAndSave(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (root %s)\n", mountPath, dag.EncodeCID(root))
		return nil
	},
}

func parseMetadataFlag(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("parse --metadata: %w", err)
	}
	return metadata, nil
}

func init() {
	addCmd.Flags().StringVar(&addMetadataJSON, "metadata", "", "metadata as a JSON object")
	rootCmd.AddCommand(addCmd)
}
