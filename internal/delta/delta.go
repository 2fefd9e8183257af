// Package delta compares two snapshots of the same tradeline field by
// field and classifies each change by its impact on the consumer.
package delta

import (
	"fmt"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// Field keys for the tracked snapshot fields, in comparison order.
const (
	FieldDateOpened       = "date_opened"
	FieldDOFD             = "dofd"
	FieldChargeOffDate    = "charge_off_date"
	FieldDateLastPayment  = "date_last_payment"
	FieldDateReported     = "date_reported"
	FieldEstimatedRemoval = "estimated_removal_date"
	FieldBalance          = "balance"
	FieldAccountStatus    = "account_status"
)

// trackedField pairs a field key with its accessor and classifier. The
// classifier receives the raw old/new values and returns the impact plus a
// human-readable rationale.
type trackedField struct {
	key      string
	value    func(model.Snapshot) string
	classify func(oldVal, newVal string) (model.Impact, string)
}

// TrackedFields returns the field keys the engine compares, in order.
func TrackedFields() []string {
	keys := make([]string, len(trackedFields))
	for i, f := range trackedFields {
		keys[i] = f.key
	}
	return keys
}

var trackedFields = []trackedField{
	{FieldDateOpened, func(s model.Snapshot) string { return s.DateOpened }, classifyNeutral("open date")},
	{FieldDOFD, func(s model.Snapshot) string { return s.DOFD }, classifyDOFD},
	{FieldChargeOffDate, func(s model.Snapshot) string { return s.ChargeOffDate }, classifyNeutral("charge-off date")},
	{FieldDateLastPayment, func(s model.Snapshot) string { return s.DateLastPayment }, classifyNeutral("last payment date")},
	{FieldDateReported, func(s model.Snapshot) string { return s.DateReported }, classifyNeutral("reported date")},
	{FieldEstimatedRemoval, func(s model.Snapshot) string { return s.EstimatedRemoval }, classifyRemoval},
	{FieldBalance, func(s model.Snapshot) string { return s.Balance }, classifyBalance},
	{FieldAccountStatus, func(s model.Snapshot) string { return s.AccountStatus }, StatusTransition},
}

// Compare returns one Delta per tracked field whose displayed value differs
// between the older and newer snapshot. An absent value compares as
// "Not Reported", so a field appearing or disappearing is itself a delta.
// Pure function: malformed values degrade to neutral classifications, they
// never fail; the inputs are furnisher data and treated as adversarial.
func Compare(older, newer model.Snapshot) []model.Delta {
	var deltas []model.Delta
	for _, f := range trackedFields {
		oldVal := model.Display(f.value(older))
		newVal := model.Display(f.value(newer))
		if oldVal == newVal {
			continue
		}
		impact, desc := f.classify(oldVal, newVal)
		deltas = append(deltas, model.Delta{
			Field:       f.key,
			OldValue:    oldVal,
			NewValue:    newVal,
			Impact:      impact,
			Description: desc,
		})
	}
	return deltas
}

// classifyDOFD flags any DOFD movement, in either direction. The date of
// first delinquency anchors the statutory reporting window and must never
// move for an unchanged debt.
func classifyDOFD(oldVal, newVal string) (model.Impact, string) {
	return model.ImpactNegative, fmt.Sprintf(
		"Date of first delinquency moved from %s to %s. The DOFD anchors the reporting window and must never change for the same debt; this is direct evidence of re-aging.",
		oldVal, newVal)
}

func classifyRemoval(oldVal, newVal string) (model.Impact, string) {
	oldDate, okOld := model.ParseDate(oldVal)
	newDate, okNew := model.ParseDate(newVal)
	if !okOld || !okNew {
		return model.ImpactNeutral, fmt.Sprintf("Estimated removal date changed from %s to %s.", oldVal, newVal)
	}
	if newDate.After(oldDate) {
		months := model.MonthsBetween(oldDate, newDate)
		return model.ImpactNegative, fmt.Sprintf(
			"Estimated removal date extended by %d months (%s to %s). Negative information may not be reported past the original window.",
			months, oldVal, newVal)
	}
	return model.ImpactPositive, fmt.Sprintf("Estimated removal date moved earlier, from %s to %s.", oldVal, newVal)
}

func classifyBalance(oldVal, newVal string) (model.Impact, string) {
	oldAmt, okOld := model.ParseMoney(oldVal)
	newAmt, okNew := model.ParseMoney(newVal)
	if !okOld || !okNew {
		return model.ImpactNeutral, fmt.Sprintf("Balance changed from %s to %s.", oldVal, newVal)
	}
	if newAmt.GreaterThan(oldAmt) {
		return model.ImpactNegative, fmt.Sprintf(
			"Balance increased from %s to %s. An increase without new activity can indicate unauthorized fee stacking.",
			oldVal, newVal)
	}
	return model.ImpactPositive, fmt.Sprintf("Balance decreased from %s to %s.", oldVal, newVal)
}

// statusRule is one status-transition heuristic. Rules run against the
// normalized status vocabulary; NormalizeStatus handles the free-text
// fallback for legacy labels.
type statusRule struct {
	from        model.AccountStatus
	to          model.AccountStatus
	impact      model.Impact
	description string
}

var statusRules = []statusRule{
	{
		from:        model.StatusPaid,
		to:          model.StatusBalanceOwed,
		impact:      model.ImpactNegative,
		description: "Account previously reported paid now shows a balance owed. Resurrecting a satisfied debt (\"zombie debt\") is a reporting violation.",
	},
	{
		from:        model.StatusDischarged,
		to:          model.StatusCollection,
		impact:      model.ImpactNegative,
		description: "Account discharged in bankruptcy now reports as in collection. Collecting on a discharged debt violates the discharge injunction.",
	},
}

// StatusTransition classifies a status change between two raw labels.
// Both labels are normalized before the rule table is consulted; unmatched
// transitions are neutral.
func StatusTransition(oldVal, newVal string) (model.Impact, string) {
	from := model.NormalizeStatus(oldVal)
	to := model.NormalizeStatus(newVal)
	for _, r := range statusRules {
		if r.from == from && r.to == to {
			return r.impact, r.description
		}
	}
	return model.ImpactNeutral, fmt.Sprintf("Account status changed from %q to %q.", oldVal, newVal)
}

// classifyNeutral builds the default classifier for fields with no
// direction-specific rule.
func classifyNeutral(label string) func(oldVal, newVal string) (model.Impact, string) {
	return func(oldVal, newVal string) (model.Impact, string) {
		return model.ImpactNeutral, fmt.Sprintf("The %s changed from %s to %s.", label, oldVal, newVal)
	}
}
