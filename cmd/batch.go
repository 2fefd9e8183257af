package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/registry"
)

var (
	batchAccountsPath string
	batchReadiness    float64
	batchConcurrency  int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Audit many accounts concurrently",
	RunE: func(cmd *cobra.Command, _ []string) error {
		accounts, err := registry.LoadAccountsFromFile(batchAccountsPath)
		if err != nil {
			return eris.Wrap(err, "batch: load accounts")
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("readiness") {
			batchReadiness = cfg.Audit.Readiness
		}
		if !cmd.Flags().Changed("concurrency") {
			batchConcurrency = cfg.Audit.MaxConcurrent
		}

		reports, err := engine.BatchAudit(cmd.Context(), accounts, batchReadiness, batchConcurrency)
		if err != nil {
			return eris.Wrap(err, "batch: run")
		}
		zap.L().Info("batch audit complete", zap.Int("accounts", len(reports)))

		return printJSON(reports)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchAccountsPath, "accounts", "", "path to the account series JSON (required)")
	batchCmd.Flags().Float64Var(&batchReadiness, "readiness", 0, "evidence readiness score, 0-100 (defaults from config)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max accounts audited in parallel (defaults from config)")
	_ = batchCmd.MarkFlagRequired("accounts")
	rootCmd.AddCommand(batchCmd)
}
