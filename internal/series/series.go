// Package series detects recurring compliance patterns across an ordered
// sequence of snapshots of the same tradeline.
package series

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/tradeline-audit/internal/confidence"
	"github.com/sells-group/tradeline-audit/internal/delta"
	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/sol"
)

// Extensions of the removal date beyond the projected statutory window by
// more than this many days escalate from medium to high severity.
const removalEscalationDays = 30

// Repeated balance increases without payment activity need at least this
// many increasing pairs before a value-shift insight fires.
const minValueIncreases = 2

// Weak evidence readiness (< 60%) adds a small upward priority weight to
// every signal: the less ready the evidence, the more urgent acting on
// what is already visible.
const weakReadinessThreshold = 60

// trackedKeys is the field subset the synthesizer indexes per adjacent
// pair, a narrower set than the pairwise engine tracks.
var trackedKeys = map[string]bool{
	delta.FieldDOFD:             true,
	delta.FieldEstimatedRemoval: true,
	delta.FieldBalance:          true,
	delta.FieldAccountStatus:    true,
	delta.FieldDateLastPayment:  true,
	delta.FieldDateReported:     true,
}

// SnapshotChanges lists which tracked fields changed in one snapshot
// relative to its predecessor. Used by callers for highlighting.
type SnapshotChanges struct {
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Fields    []string  `json:"fields"`
}

// Result holds the synthesized insights, most urgent first, and the
// per-snapshot changed-field index.
type Result struct {
	Insights []model.Insight   `json:"insights"`
	Changes  []SnapshotChanges `json:"changes"`
}

// pairChange records one field change between an adjacent snapshot pair.
type pairChange struct {
	older, newer model.SeriesSnapshot
	d            model.Delta
}

// Synthesize detects cross-snapshot patterns over the series. The caller
// supplies snapshots oldest first, but order is validated, not trusted:
// the synthesizer sorts by timestamp before comparing. A series shorter
// than two snapshots yields an empty result; "no history yet" is a valid
// state, not an error. readiness is the externally supplied
// evidence-completeness percentage in [0,100].
func Synthesize(snapshots []model.SeriesSnapshot, readiness float64) Result {
	if len(snapshots) < 2 {
		return Result{}
	}

	ordered := Chronological(snapshots)

	// Index changes per adjacent pair.
	var changes []SnapshotChanges
	byField := make(map[string][]pairChange)
	for i := 1; i < len(ordered); i++ {
		older, newer := ordered[i-1], ordered[i]
		sc := SnapshotChanges{Label: newer.Label, Timestamp: newer.Timestamp}
		for _, d := range delta.Compare(older.Snapshot, newer.Snapshot) {
			if !trackedKeys[d.Field] {
				continue
			}
			sc.Fields = append(sc.Fields, d.Field)
			byField[d.Field] = append(byField[d.Field], pairChange{older: older, newer: newer, d: d})
		}
		changes = append(changes, sc)
	}

	var insights []model.Insight
	if in, ok := detectReaging(byField[delta.FieldDOFD]); ok {
		insights = append(insights, in)
	}
	if in, ok := detectRemovalExtension(byField[delta.FieldEstimatedRemoval]); ok {
		insights = append(insights, in)
	}
	if in, ok := detectValueShift(byField[delta.FieldBalance], byField[delta.FieldDateLastPayment]); ok {
		insights = append(insights, in)
	}
	if in, ok := detectStatusFlip(byField[delta.FieldAccountStatus]); ok {
		insights = append(insights, in)
	}
	if in, ok := detectReportingShift(ordered, byField); ok {
		insights = append(insights, in)
	}

	for i := range insights {
		insights[i].ID = uuid.New().String()
		insights[i].Confidence = confidence.InsightContribution(insights[i].Severity, readiness)
	}
	prioritize(insights, readiness)

	return Result{Insights: insights, Changes: changes}
}

// Chronological returns the series sorted oldest first by timestamp.
// Stable, so caller order breaks timestamp ties. Logs when the caller's
// order was not already chronological; call sites historically assumed
// insertion order, which is validated here instead.
func Chronological(snapshots []model.SeriesSnapshot) []model.SeriesSnapshot {
	ordered := make([]model.SeriesSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	for i := range ordered {
		if ordered[i].Label != snapshots[i].Label {
			zap.L().Warn("series: input snapshots were not in chronological order",
				zap.Int("count", len(snapshots)),
			)
			break
		}
	}
	return ordered
}

// detectReaging fires on any DOFD movement anywhere in the series. A DOFD
// change is always high severity regardless of direction.
func detectReaging(dofdChanges []pairChange) (model.Insight, bool) {
	if len(dofdChanges) == 0 {
		return model.Insight{}, false
	}
	return model.Insight{
		Type:     model.InsightReaging,
		Severity: model.SeverityHigh,
		Title:    "Re-aged delinquency date",
		Summary: fmt.Sprintf(
			"The date of first delinquency moved %d time(s) across this series. The DOFD is fixed for the life of a debt; any movement extends the reporting window illegally.",
			len(dofdChanges)),
		Evidence: evidenceFor(dofdChanges),
	}, true
}

// detectRemovalExtension fires when the removal date moved later anywhere
// in the series. Severity escalates to high when the latest reported
// removal exceeds the window projected from the DOFD by more than the
// escalation slack; otherwise medium.
func detectRemovalExtension(removalChanges []pairChange) (model.Insight, bool) {
	var extensions []pairChange
	for _, pc := range removalChanges {
		oldDate, okOld := model.ParseDate(pc.d.OldValue)
		newDate, okNew := model.ParseDate(pc.d.NewValue)
		if okOld && okNew && newDate.After(oldDate) {
			extensions = append(extensions, pc)
		}
	}
	if len(extensions) == 0 {
		return model.Insight{}, false
	}

	severity := model.SeverityMedium
	last := extensions[len(extensions)-1]
	if reported, ok := model.ParseDate(last.d.NewValue); ok {
		if expected := sol.ProjectRemoval(last.newer.DOFD, last.newer.Bureau); expected != nil {
			if reported.Sub(*expected).Hours()/24 > removalEscalationDays {
				severity = model.SeverityHigh
			}
		}
	}

	return model.Insight{
		Type:     model.InsightRemovalExtension,
		Severity: severity,
		Title:    "Removal date pushed out",
		Summary: fmt.Sprintf(
			"The estimated removal date moved later %d time(s). Extending the removal date keeps negative information on the report past its statutory window.",
			len(extensions)),
		Evidence: evidenceFor(extensions),
	}, true
}

// detectValueShift fires on repeated balance increases with no
// corresponding payment activity in the same pairs.
func detectValueShift(balanceChanges, paymentChanges []pairChange) (model.Insight, bool) {
	paymentMoved := make(map[string]bool)
	for _, pc := range paymentChanges {
		paymentMoved[pc.newer.Label] = true
	}

	var increases []pairChange
	for _, pc := range balanceChanges {
		oldAmt, okOld := model.ParseMoney(pc.d.OldValue)
		newAmt, okNew := model.ParseMoney(pc.d.NewValue)
		if okOld && okNew && newAmt.GreaterThan(oldAmt) && !paymentMoved[pc.newer.Label] {
			increases = append(increases, pc)
		}
	}
	if len(increases) < minValueIncreases {
		return model.Insight{}, false
	}

	return model.Insight{
		Type:     model.InsightValueShift,
		Severity: model.SeverityMedium,
		Title:    "Balance climbing without activity",
		Summary: fmt.Sprintf(
			"The balance increased %d times with no change in payment activity. Growth on a dormant account suggests fees or interest being stacked onto the original debt.",
			len(increases)),
		Evidence: evidenceFor(increases),
	}, true
}

// detectStatusFlip fires on any status regression in the series, such as a
// paid account resurfacing with a balance or a discharged debt returning
// to collection.
func detectStatusFlip(statusChanges []pairChange) (model.Insight, bool) {
	var regressions []pairChange
	for _, pc := range statusChanges {
		if impact, _ := delta.StatusTransition(pc.d.OldValue, pc.d.NewValue); impact == model.ImpactNegative {
			regressions = append(regressions, pc)
		}
	}
	if len(regressions) == 0 {
		return model.Insight{}, false
	}

	return model.Insight{
		Type:     model.InsightStatusFlip,
		Severity: model.SeverityHigh,
		Title:    "Account status regressed",
		Summary: fmt.Sprintf(
			"The account status regressed %d time(s): a previously resolved debt is being reported as owed again.",
			len(regressions)),
		Evidence: evidenceFor(regressions),
	}, true
}

// detectReportingShift flags reported-date irregularities relative to
// neighboring snapshots: a reported date moving backward is medium; a
// reported date standing still while the balance or status changed is low.
func detectReportingShift(ordered []model.SeriesSnapshot, byField map[string][]pairChange) (model.Insight, bool) {
	var backward []pairChange
	for _, pc := range byField[delta.FieldDateReported] {
		oldDate, okOld := model.ParseDate(pc.d.OldValue)
		newDate, okNew := model.ParseDate(pc.d.NewValue)
		if okOld && okNew && newDate.Before(oldDate) {
			backward = append(backward, pc)
		}
	}
	if len(backward) > 0 {
		return model.Insight{
			Type:     model.InsightReportingShift,
			Severity: model.SeverityMedium,
			Title:    "Reported date moved backward",
			Summary:  "The last-reported date moved backward between pulls. Reporting timestamps only move forward; a reversal points to manual manipulation of the tradeline.",
			Evidence: evidenceFor(backward),
		}, true
	}

	// Stale reported date: substantive fields changed but the reported
	// date did not advance with them.
	moved := make(map[string]bool)
	for _, pc := range byField[delta.FieldDateReported] {
		moved[pc.newer.Label] = true
	}
	var evidence []string
	for _, key := range []string{delta.FieldBalance, delta.FieldAccountStatus} {
		for _, pc := range byField[key] {
			if !moved[pc.newer.Label] {
				evidence = append(evidence, fmt.Sprintf("%s changed in %s without a reported-date update", pc.d.Field, pc.newer.Label))
			}
		}
	}
	if len(evidence) == 0 {
		return model.Insight{}, false
	}
	return model.Insight{
		Type:     model.InsightReportingShift,
		Severity: model.SeverityLow,
		Title:    "Changes reported without a date update",
		Summary:  "Tradeline values changed between pulls while the last-reported date stood still, so the bureau record misstates when the furnisher last touched the account.",
		Evidence: evidence,
	}, true
}

// evidenceFor renders one evidence line per contributing pair change.
func evidenceFor(changes []pairChange) []string {
	evidence := make([]string, len(changes))
	for i, pc := range changes {
		evidence[i] = fmt.Sprintf("%s: %s (%s) → %s (%s)",
			pc.d.Field, pc.d.OldValue, pc.older.Label, pc.d.NewValue, pc.newer.Label)
	}
	return evidence
}

// prioritize orders insights most urgent first: severity rank, then the
// weak-readiness weight, then confidence, then type for determinism.
func prioritize(insights []model.Insight, readiness float64) {
	weight := func(in model.Insight) int {
		w := in.Severity.Rank() * 100
		if readiness < weakReadinessThreshold {
			w += 5
		}
		return w
	}
	sort.SliceStable(insights, func(i, j int) bool {
		wi, wj := weight(insights[i]), weight(insights[j])
		if wi != wj {
			return wi > wj
		}
		if insights[i].Confidence != insights[j].Confidence {
			return insights[i].Confidence > insights[j].Confidence
		}
		return insights[i].Type < insights[j].Type
	})
}
