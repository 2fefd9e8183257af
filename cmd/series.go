package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradeline-audit/internal/registry"
	"github.com/sells-group/tradeline-audit/internal/series"
)

var (
	seriesPath      string
	seriesReadiness float64
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Synthesize insights from a snapshot series",
	RunE: func(cmd *cobra.Command, _ []string) error {
		snapshots, err := registry.LoadSeriesFromFile(seriesPath)
		if err != nil {
			return eris.Wrap(err, "series: load")
		}

		if !cmd.Flags().Changed("readiness") {
			seriesReadiness = cfg.Audit.Readiness
		}

		return printJSON(series.Synthesize(snapshots, seriesReadiness))
	},
}

func init() {
	seriesCmd.Flags().StringVar(&seriesPath, "series", "", "path to the snapshot series JSON (required)")
	seriesCmd.Flags().Float64Var(&seriesReadiness, "readiness", 0, "evidence readiness score, 0-100 (defaults from config)")
	_ = seriesCmd.MarkFlagRequired("series")
	rootCmd.AddCommand(seriesCmd)
}
