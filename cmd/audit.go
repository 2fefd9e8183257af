package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradeline-audit/internal/registry"
)

var (
	auditSeriesPath string
	auditAccountID  string
	auditReadiness  float64
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run a full audit over a snapshot series",
	Long: `Runs the delta, series, timeline, and statute-of-limitations analyses
over a chronological snapshot series and prints the combined report.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snapshots, err := registry.LoadSeriesFromFile(auditSeriesPath)
		if err != nil {
			return eris.Wrap(err, "audit: load series")
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("readiness") {
			auditReadiness = cfg.Audit.Readiness
		}

		return printJSON(engine.Audit(auditAccountID, snapshots, auditReadiness))
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditSeriesPath, "series", "", "path to the snapshot series JSON (required)")
	auditCmd.Flags().StringVar(&auditAccountID, "account", "", "account identifier for the report")
	auditCmd.Flags().Float64Var(&auditReadiness, "readiness", 0, "evidence readiness score, 0-100 (defaults from config)")
	_ = auditCmd.MarkFlagRequired("series")
	rootCmd.AddCommand(auditCmd)
}
