package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systemshift/leaky/internal/dag"
)

var tagMetadataJSON string

var tagCmd = &cobra.Command{
	Use:   "tag <mount-path>",
	Short: "Replace a file's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		metadata, err := parseMetadataFlag(tagMetadataJSON)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		m, err := a.openMount(ctx)
		if err != nil {
			return err
		}
		if err := m.Tag(ctx, args[0], metadata); err != nil {
			return err
		}

		root, err := a.commitAndSave(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tagged %s (root %s)\n", args[0], dag.EncodeCID(root))
		return nil
	},
}

func init() {
	tagCmd.Flags().StringVar(&tagMetadataJSON, "metadata", "", "metadata as a JSON object")
	tagCmd.MarkFlagRequired("metadata")
	rootCmd.AddCommand(tagCmd)
}
