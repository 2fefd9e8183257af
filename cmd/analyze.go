package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradeline-audit/internal/registry"
)

var analyzeSnapshotPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single snapshot for timeline and SOL issues",
	Long:  "Validates the chronological consistency of one snapshot, resolves the statute of limitations for its jurisdiction and debt type, and projects the expected removal date.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := registry.LoadSnapshotFromFile(analyzeSnapshotPath)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		return printJSON(engine.AnalyzeSnapshot(snap))
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSnapshotPath, "snapshot", "", "path to snapshot JSON file (required)")
	_ = analyzeCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(analyzeCmd)
}
