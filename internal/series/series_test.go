package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradeline-audit/internal/model"
)

func seriesSnapshot(label string, ts time.Time, mutate func(*model.Snapshot)) model.SeriesSnapshot {
	snap := model.Snapshot{
		AccountName:      "Midland Credit",
		DateOpened:       "2018-06-01",
		DOFD:             "2019-03-01",
		ChargeOffDate:    "2019-09-01",
		DateLastPayment:  "2019-02-15",
		DateReported:     "2023-01-10",
		EstimatedRemoval: "2026-03-01",
		Balance:          "$1,240.50",
		AccountStatus:    "Charge Off",
		Bureau:           model.BureauExperian,
		StateCode:        "CA",
		DebtType:         model.DebtCreditCard,
	}
	if mutate != nil {
		mutate(&snap)
	}
	return model.SeriesSnapshot{Snapshot: snap, Label: label, Timestamp: ts}
}

func ts(month int) time.Time {
	return time.Date(2023, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func findInsight(t *testing.T, insights []model.Insight, typ model.InsightType) model.Insight {
	t.Helper()
	for _, in := range insights {
		if in.Type == typ {
			return in
		}
	}
	t.Fatalf("no %s insight in %v", typ, insights)
	return model.Insight{}
}

func TestSynthesizeShortSeries(t *testing.T) {
	assert.Empty(t, Synthesize(nil, 50).Insights)
	assert.Empty(t, Synthesize([]model.SeriesSnapshot{seriesSnapshot("only", ts(1), nil)}, 50).Insights)
}

func TestSynthesizeNoChanges(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), nil),
	}, 50)
	assert.Empty(t, res.Insights)
	require.Len(t, res.Changes, 1)
	assert.Empty(t, res.Changes[0].Fields)
}

func TestSynthesizeDetectsReaging(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.DOFD = "2020-01-01" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightReaging)
	assert.Equal(t, model.SeverityHigh, in.Severity)
	require.Len(t, in.Evidence, 1)
	assert.Contains(t, in.Evidence[0], "2019-03-01 (jan)")
	assert.Contains(t, in.Evidence[0], "2020-01-01 (feb)")
	assert.NotEmpty(t, in.ID)
	// High base 90 + 4 for readiness 50.
	assert.Equal(t, 94, in.Confidence)
}

func TestSynthesizeRemovalExtensionMedium(t *testing.T) {
	// Removal moves out a month but stays inside the window projected
	// from the DOFD, so the insight stays medium.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), func(s *model.Snapshot) { s.EstimatedRemoval = "2026-01-01" }),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.EstimatedRemoval = "2026-02-01" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightRemovalExtension)
	assert.Equal(t, model.SeverityMedium, in.Severity)
}

func TestSynthesizeRemovalExtensionEscalates(t *testing.T) {
	// The extended removal lands far past DOFD + 7 years (2026-03-01 for
	// Experian), escalating to high.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.EstimatedRemoval = "2027-06-01" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightRemovalExtension)
	assert.Equal(t, model.SeverityHigh, in.Severity)
}

func TestSynthesizeRemovalMovedEarlierIgnored(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.EstimatedRemoval = "2025-12-01" }),
	}, 50)

	for _, in := range res.Insights {
		assert.NotEqual(t, model.InsightRemovalExtension, in.Type)
	}
}

func TestSynthesizeValueShift(t *testing.T) {
	// Two balance increases with no payment-date movement anywhere.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.Balance = "$1,300.00" }),
		seriesSnapshot("mar", ts(3), func(s *model.Snapshot) { s.Balance = "$1,360.00" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightValueShift)
	assert.Equal(t, model.SeverityMedium, in.Severity)
	assert.Len(t, in.Evidence, 2)
}

func TestSynthesizeValueShiftNeedsTwoIncreases(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.Balance = "$1,300.00" }),
	}, 50)

	for _, in := range res.Insights {
		assert.NotEqual(t, model.InsightValueShift, in.Type)
	}
}

func TestSynthesizeValueShiftSuppressedByPayment(t *testing.T) {
	// Balance increases explained by payment activity in the same pairs
	// do not count toward the threshold.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) {
			s.Balance = "$1,300.00"
			s.DateLastPayment = "2023-01-20"
		}),
		seriesSnapshot("mar", ts(3), func(s *model.Snapshot) {
			s.Balance = "$1,360.00"
			s.DateLastPayment = "2023-02-20"
		}),
	}, 50)

	for _, in := range res.Insights {
		assert.NotEqual(t, model.InsightValueShift, in.Type)
	}
}

func TestSynthesizeStatusFlip(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), func(s *model.Snapshot) {
			s.AccountStatus = "Paid in Full"
			s.Balance = "$0"
		}),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) {
			s.AccountStatus = "Balance Owed"
			s.Balance = "$0"
		}),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightStatusFlip)
	assert.Equal(t, model.SeverityHigh, in.Severity)
}

func TestSynthesizeReportingShiftBackward(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.DateReported = "2022-11-01" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightReportingShift)
	assert.Equal(t, model.SeverityMedium, in.Severity)
}

func TestSynthesizeReportingShiftStale(t *testing.T) {
	// Balance moved but the reported date stood still: low severity.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.Balance = "$1,100" }),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightReportingShift)
	assert.Equal(t, model.SeverityLow, in.Severity)
}

func TestSynthesizeSortsOutOfOrderInput(t *testing.T) {
	// Snapshots arrive newest first; the DOFD only "moves" if they are
	// compared in timestamp order.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) { s.DOFD = "2020-01-01" }),
		seriesSnapshot("jan", ts(1), nil),
	}, 50)

	in := findInsight(t, res.Insights, model.InsightReaging)
	require.Len(t, in.Evidence, 1)
	assert.Contains(t, in.Evidence[0], "2019-03-01 (jan)")
	assert.Contains(t, in.Evidence[0], "2020-01-01 (feb)")
}

func TestSynthesizePrioritizesBySeverity(t *testing.T) {
	// Re-aging (high) plus a stale-reported-date signal (low): the high
	// severity insight leads regardless of detector order.
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) {
			s.DOFD = "2020-01-01"
			s.Balance = "$1,100"
		}),
	}, 50)

	require.GreaterOrEqual(t, len(res.Insights), 2)
	assert.Equal(t, model.SeverityHigh, res.Insights[0].Severity)
	for i := 1; i < len(res.Insights); i++ {
		assert.LessOrEqual(t, res.Insights[i].Severity.Rank(), res.Insights[i-1].Severity.Rank())
	}
}

func TestSynthesizeChangesIndex(t *testing.T) {
	res := Synthesize([]model.SeriesSnapshot{
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), func(s *model.Snapshot) {
			s.Balance = "$1,300"
			s.AccountStatus = "Collection"
		}),
		seriesSnapshot("mar", ts(3), nil),
	}, 50)

	require.Len(t, res.Changes, 2)
	assert.Equal(t, "feb", res.Changes[0].Label)
	assert.ElementsMatch(t, []string{"balance", "account_status"}, res.Changes[0].Fields)
	assert.Equal(t, "mar", res.Changes[1].Label)
	assert.ElementsMatch(t, []string{"balance", "account_status"}, res.Changes[1].Fields)
}

func TestChronological(t *testing.T) {
	in := []model.SeriesSnapshot{
		seriesSnapshot("mar", ts(3), nil),
		seriesSnapshot("jan", ts(1), nil),
		seriesSnapshot("feb", ts(2), nil),
	}
	out := Chronological(in)
	require.Len(t, out, 3)
	assert.Equal(t, "jan", out[0].Label)
	assert.Equal(t, "feb", out[1].Label)
	assert.Equal(t, "mar", out[2].Label)
	// Input is untouched.
	assert.Equal(t, "mar", in[0].Label)
}
