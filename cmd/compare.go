package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradeline-audit/internal/delta"
	"github.com/sells-group/tradeline-audit/internal/registry"
)

var (
	compareOlderPath string
	compareNewerPath string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Diff two snapshots of the same tradeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		older, err := registry.LoadSnapshotFromFile(compareOlderPath)
		if err != nil {
			return eris.Wrap(err, "compare: older")
		}
		newer, err := registry.LoadSnapshotFromFile(compareNewerPath)
		if err != nil {
			return eris.Wrap(err, "compare: newer")
		}

		return printJSON(delta.Compare(older, newer))
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareOlderPath, "older", "", "path to the older snapshot JSON (required)")
	compareCmd.Flags().StringVar(&compareNewerPath, "newer", "", "path to the newer snapshot JSON (required)")
	_ = compareCmd.MarkFlagRequired("older")
	_ = compareCmd.MarkFlagRequired("newer")
	rootCmd.AddCommand(compareCmd)
}
