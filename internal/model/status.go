package model

import "strings"

// AccountStatus is the closed status vocabulary snapshots are normalized to.
// Furnishers report free text; ingestion maps it here and the substring
// fallback in NormalizeStatus only covers unmapped legacy values.
type AccountStatus string

const (
	StatusCurrent     AccountStatus = "current"
	StatusLate        AccountStatus = "late"
	StatusChargeOff   AccountStatus = "charge_off"
	StatusCollection  AccountStatus = "collection"
	StatusPaid        AccountStatus = "paid"
	StatusSettled     AccountStatus = "settled"
	StatusDischarged  AccountStatus = "discharged"
	StatusBalanceOwed AccountStatus = "balance_owed"
	StatusDisputed    AccountStatus = "disputed"
	StatusUnknown     AccountStatus = "unknown"
)

// statusByLabel maps exact (lowercased, trimmed) furnisher labels to the
// closed vocabulary.
var statusByLabel = map[string]AccountStatus{
	"current":                    StatusCurrent,
	"open":                       StatusCurrent,
	"pays as agreed":             StatusCurrent,
	"late":                       StatusLate,
	"past due":                   StatusLate,
	"30 days late":               StatusLate,
	"60 days late":               StatusLate,
	"90 days late":               StatusLate,
	"charge off":                 StatusChargeOff,
	"charge-off":                 StatusChargeOff,
	"charged off":                StatusChargeOff,
	"collection":                 StatusCollection,
	"in collection":              StatusCollection,
	"sold to collections":        StatusCollection,
	"paid":                       StatusPaid,
	"paid in full":               StatusPaid,
	"paid, closed":               StatusPaid,
	"settled":                    StatusSettled,
	"settled for less":           StatusSettled,
	"discharged":                 StatusDischarged,
	"discharged in bankruptcy":   StatusDischarged,
	"included in bankruptcy":     StatusDischarged,
	"balance owed":               StatusBalanceOwed,
	"balance due":                StatusBalanceOwed,
	"account disputed":           StatusDisputed,
	"disputed":                   StatusDisputed,
	"consumer disputes this account": StatusDisputed,
}

// statusFallbacks is the ordered substring fallback for labels the exact
// table does not cover. Order matters: "paid charge off" must normalize to
// paid, not charge_off.
var statusFallbacks = []struct {
	substr string
	status AccountStatus
}{
	{"paid", StatusPaid},
	{"settl", StatusSettled},
	{"discharg", StatusDischarged},
	{"collect", StatusCollection},
	{"charge", StatusChargeOff},
	{"balance", StatusBalanceOwed},
	{"owed", StatusBalanceOwed},
	{"disput", StatusDisputed},
	{"late", StatusLate},
	{"delinq", StatusLate},
	{"past due", StatusLate},
	{"current", StatusCurrent},
}

// NormalizeStatus maps a free-text account status label to the closed
// vocabulary. Unknown input normalizes to StatusUnknown, never an error.
func NormalizeStatus(label string) AccountStatus {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return StatusUnknown
	}
	if st, ok := statusByLabel[s]; ok {
		return st
	}
	for _, f := range statusFallbacks {
		if strings.Contains(s, f.substr) {
			return f.status
		}
	}
	return StatusUnknown
}
