// Package report assembles the individual analysis components into full
// audit reports, one tradeline at a time or in concurrent batches.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/tradeline-audit/internal/confidence"
	"github.com/sells-group/tradeline-audit/internal/delta"
	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/series"
	"github.com/sells-group/tradeline-audit/internal/sol"
	"github.com/sells-group/tradeline-audit/internal/timeline"
)

// defaultBatchConcurrency bounds concurrent account audits when the caller
// does not set a limit.
const defaultBatchConcurrency = 8

// SnapshotReport is the single-snapshot analysis: chronological
// consistency, limitation outcome, and the projected removal date.
type SnapshotReport struct {
	Snapshot        model.Snapshot  `json:"snapshot"`
	Timeline        timeline.Result `json:"timeline"`
	SOL             model.SOLResult `json:"sol"`
	ExpectedRemoval *time.Time      `json:"expected_removal,omitempty"`
}

// AuditReport is the full outcome for one tradeline series: per-current-
// snapshot diagnostics, the latest pairwise deltas, series-wide insights,
// and the aggregate confidence score.
type AuditReport struct {
	AccountID   string                `json:"account_id,omitempty"`
	Current     SnapshotReport        `json:"current"`
	LatestDelta []model.Delta         `json:"latest_delta,omitempty"`
	Series      series.Result         `json:"series"`
	Confidence  model.ConfidenceScore `json:"confidence"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// AccountSeries is one account's snapshot history for batch auditing.
type AccountSeries struct {
	AccountID string                 `json:"account_id"`
	Snapshots []model.SeriesSnapshot `json:"snapshots"`
}

// Engine runs audits against an injected limitation table. Stateless
// between calls; safe for concurrent use.
type Engine struct {
	resolver *sol.Resolver
	now      func() time.Time
}

// NewEngine creates an Engine. A nil table uses the shipped defaults.
func NewEngine(table *sol.Table) *Engine {
	return &Engine{resolver: sol.NewResolver(table), now: time.Now}
}

// WithClock overrides the engine's clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AnalyzeSnapshot runs the single-snapshot consumers: removal projection,
// timeline validation against the projection, and SOL resolution.
func (e *Engine) AnalyzeSnapshot(snap model.Snapshot) SnapshotReport {
	expected := sol.ProjectRemoval(snap.DOFD, snap.Bureau)
	return SnapshotReport{
		Snapshot:        snap,
		Timeline:        timeline.Validate(snap, expected),
		SOL:             e.resolver.Resolve(snap.StateCode, snap.DebtType, snap.DOFD, e.now()),
		ExpectedRemoval: expected,
	}
}

// Audit produces the full report for one account's series. readiness is
// the externally supplied evidence-completeness percentage. A series of
// fewer than two snapshots still produces the single-snapshot diagnostics
// for the latest reading, with empty series results.
func (e *Engine) Audit(accountID string, snapshots []model.SeriesSnapshot, readiness float64) AuditReport {
	rep := AuditReport{
		AccountID:   accountID,
		GeneratedAt: e.now(),
	}
	if len(snapshots) == 0 {
		return rep
	}

	ordered := series.Chronological(snapshots)
	synth := series.Synthesize(ordered, readiness)
	rep.Series = synth

	current := ordered[len(ordered)-1]
	rep.Current = e.AnalyzeSnapshot(current.Snapshot)
	if len(ordered) >= 2 {
		previous := ordered[len(ordered)-2]
		rep.LatestDelta = delta.Compare(previous.Snapshot, current.Snapshot)
	}

	var high, medium int
	for _, in := range synth.Insights {
		switch in.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}
	rep.Confidence = confidence.Score(high, medium, readiness)

	return rep
}

// BatchAudit audits many accounts concurrently with a bounded worker
// group. Results keep the input order. concurrency <= 0 uses the default
// limit.
func (e *Engine) BatchAudit(ctx context.Context, accounts []AccountSeries, readiness float64, concurrency int) ([]AuditReport, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	reports := make([]AuditReport, len(accounts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, account := range accounts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			reports[i] = e.Audit(account.AccountID, account.Snapshots, readiness)
			zap.L().Debug("report: audited account",
				zap.String("account_id", account.AccountID),
				zap.Int("snapshots", len(account.Snapshots)),
				zap.Int("insights", len(reports[i].Series.Insights)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
