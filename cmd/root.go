package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tradeline-audit",
	Short: "Temporal compliance analysis for credit report tradelines",
	Long:  "Compares dated snapshots of credit-account records, detects re-aging and related reporting violations, and projects statute-of-limitations and removal dates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
