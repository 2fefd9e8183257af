package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/registry"
)

var (
	importSeriesPath string
	importAccountID  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a snapshot series into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snapshots, err := registry.LoadSeriesFromFile(importSeriesPath)
		if err != nil {
			return eris.Wrap(err, "import: load series")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, snap := range snapshots {
			if err := st.SaveSnapshot(ctx, importAccountID, snap); err != nil {
				return eris.Wrapf(err, "import: save snapshot %q", snap.Label)
			}
		}
		zap.L().Info("imported snapshots",
			zap.String("account", importAccountID),
			zap.Int("count", len(snapshots)),
		)

		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSeriesPath, "series", "", "path to the snapshot series JSON (required)")
	importCmd.Flags().StringVar(&importAccountID, "account", "", "account identifier to import under (required)")
	_ = importCmd.MarkFlagRequired("series")
	_ = importCmd.MarkFlagRequired("account")
	rootCmd.AddCommand(importCmd)
}
