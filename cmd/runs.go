package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored audit runs",
	Long:  "Commands for listing, viewing, and summarizing persisted audit runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		account, _ := cmd.Flags().GetString("account")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{AccountID: account, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full report of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		if run == nil {
			return eris.Errorf("run %s not found", args[0])
		}

		return printJSON(run)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics across stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, computeRunStats(runs))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("account", "", "filter by account identifier")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsStatsCmd.Flags().Int("limit", 10000, "max number of runs to aggregate")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of audit runs.
type runStats struct {
	Total        int
	CourtReady   int
	ReviewReady  int
	NeedsEvid    int
	HighInsights int
	AvgScore     float64
}

func computeRunStats(runs []store.AuditRun) runStats {
	var s runStats
	s.Total = len(runs)

	var totalScore int
	for _, r := range runs {
		totalScore += r.Report.Confidence.Score
		switch r.Report.Confidence.Tier {
		case model.TierCourtReady:
			s.CourtReady++
		case model.TierReviewReady:
			s.ReviewReady++
		default:
			s.NeedsEvid++
		}
		for _, ins := range r.Report.Series.Insights {
			if ins.Severity == model.SeverityHigh {
				s.HighInsights++
			}
		}
	}

	if s.Total > 0 {
		s.AvgScore = float64(totalScore) / float64(s.Total)
	}
	return s
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []store.AuditRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tACCOUNT\tSCORE\tTIER\tINSIGHTS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----\t----\t--------\t-------")

	for _, r := range runs {
		account := r.AccountID
		if len(account) > 30 {
			account = account[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			truncateID(r.ID),
			account,
			r.Report.Confidence.Score,
			r.Report.Confidence.Tier,
			len(r.Report.Series.Insights),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Court ready:\t%d\n", s.CourtReady)
	_, _ = fmt.Fprintf(w, "Review ready:\t%d\n", s.ReviewReady)
	_, _ = fmt.Fprintf(w, "Needs evidence:\t%d\n", s.NeedsEvid)
	_, _ = fmt.Fprintf(w, "High-severity insights:\t%d\n", s.HighInsights)
	_, _ = fmt.Fprintf(w, "Average confidence:\t%.1f\n", s.AvgScore)
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
