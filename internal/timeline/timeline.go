// Package timeline checks the chronological consistency of the date fields
// within a single tradeline snapshot.
package timeline

import (
	"fmt"
	"time"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// Integrity score bounds: each blocking issue costs 20 points, each warning
// 10, and the score never drops below the floor: even the worst snapshot
// retains some recoverable signal.
const (
	scoreStart       = 100
	blockingPenalty  = 20
	warningPenalty   = 10
	scoreFloor       = 20
	removalSlackDays = 30
)

// parsedDates holds the snapshot's date fields after best-effort parsing.
// A nil entry means the field was absent or unparsable; rules touching it
// do not fire.
type parsedDates struct {
	opened    *time.Time
	dofd      *time.Time
	chargeOff *time.Time
	lastPay   *time.Time
	reported  *time.Time
	removal   *time.Time
	expected  *time.Time // projected removal, supplied by the caller
}

// rule is one ordering invariant. check returns whether the rule fires and
// the issue description when it does.
type rule struct {
	id       string
	severity model.IssueSeverity
	title    string
	field    string
	check    func(d parsedDates) (bool, string)
}

var rules = []rule{
	{
		id: "opened-after-dofd", severity: model.IssueBlocking,
		title: "Delinquency predates account opening", field: "dofd",
		check: func(d parsedDates) (bool, string) {
			if d.dofd == nil || d.opened == nil || !d.dofd.Before(*d.opened) {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The date of first delinquency (%s) falls before the account was opened (%s). An account cannot go delinquent before it exists.",
				fmtDate(*d.dofd), fmtDate(*d.opened))
		},
	},
	{
		id: "dofd-after-chargeoff", severity: model.IssueBlocking,
		title: "Delinquency postdates charge-off", field: "dofd",
		check: func(d parsedDates) (bool, string) {
			if d.dofd == nil || d.chargeOff == nil || !d.dofd.After(*d.chargeOff) {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The date of first delinquency (%s) falls after the charge-off date (%s). A debt is delinquent before it can be charged off.",
				fmtDate(*d.dofd), fmtDate(*d.chargeOff))
		},
	},
	{
		id: "payment-after-dofd", severity: model.IssueWarning,
		title: "Payment recorded after first delinquency", field: "date_last_payment",
		check: func(d parsedDates) (bool, string) {
			if d.lastPay == nil || d.dofd == nil || !d.lastPay.After(*d.dofd) {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The last payment (%s) postdates the first delinquency (%s). A later payment on the same obligation may indicate the DOFD was advanced.",
				fmtDate(*d.lastPay), fmtDate(*d.dofd))
		},
	},
	{
		id: "reported-after-removal", severity: model.IssueWarning,
		title: "Reported past the removal date", field: "date_reported",
		check: func(d parsedDates) (bool, string) {
			if d.reported == nil || d.removal == nil || !d.reported.After(*d.removal) {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The tradeline was reported or updated (%s) after its own estimated removal date (%s).",
				fmtDate(*d.reported), fmtDate(*d.removal))
		},
	},
	{
		id: "reported-before-opened", severity: model.IssueWarning,
		title: "Reported before account opening", field: "date_reported",
		check: func(d parsedDates) (bool, string) {
			if d.reported == nil || d.opened == nil || !d.reported.Before(*d.opened) {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The tradeline was reported (%s) before the account was opened (%s).",
				fmtDate(*d.reported), fmtDate(*d.opened))
		},
	},
	{
		id: "removal-delta", severity: model.IssueWarning,
		title: "Removal date exceeds the statutory window", field: "estimated_removal_date",
		check: func(d parsedDates) (bool, string) {
			if d.removal == nil || d.expected == nil {
				return false, ""
			}
			over := int(d.removal.Sub(*d.expected).Hours() / 24)
			if over <= removalSlackDays {
				return false, ""
			}
			return true, fmt.Sprintf(
				"The reported removal date (%s) sits %d days past the removal date projected from the DOFD (%s).",
				fmtDate(*d.removal), over, fmtDate(*d.expected))
		},
	},
}

// Result holds the validator's findings for one snapshot.
type Result struct {
	Issues         []model.TimelineIssue `json:"issues"`
	IntegrityScore int                   `json:"integrity_score"`
}

// Validate checks every ordering invariant against the snapshot. The
// expected removal date comes from the removal projector; pass nil when no
// projection is available. Rules are null-safe: a rule only fires when
// every date it compares parsed successfully.
func Validate(snap model.Snapshot, expectedRemoval *time.Time) Result {
	d := parsedDates{
		opened:    parse(snap.DateOpened),
		dofd:      parse(snap.DOFD),
		chargeOff: parse(snap.ChargeOffDate),
		lastPay:   parse(snap.DateLastPayment),
		reported:  parse(snap.DateReported),
		removal:   parse(snap.EstimatedRemoval),
		expected:  expectedRemoval,
	}

	var issues []model.TimelineIssue
	score := scoreStart
	for _, r := range rules {
		fired, desc := r.check(d)
		if !fired {
			continue
		}
		issues = append(issues, model.TimelineIssue{
			ID:          r.id,
			Severity:    r.severity,
			Title:       r.title,
			Description: desc,
			Field:       r.field,
		})
		if r.severity == model.IssueBlocking {
			score -= blockingPenalty
		} else {
			score -= warningPenalty
		}
	}
	if score < scoreFloor {
		score = scoreFloor
	}
	return Result{Issues: issues, IntegrityScore: score}
}

func parse(s string) *time.Time {
	t, ok := model.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

func fmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}
