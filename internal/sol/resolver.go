package sol

import (
	"time"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// Contract categories the limitation table is keyed by.
const (
	CategoryWritten     = "written_contract"
	CategoryOral        = "oral_contract"
	CategoryPromissory  = "promissory_note"
	CategoryOpenAccount = "open_account"
)

// expiringSoonDays is the days-remaining threshold below which an active
// SOL is reported as expiring soon.
const expiringSoonDays = 180

// debtCategories maps each debt type to its contract category. Types not
// listed resolve as written contracts, the most common default in
// collection practice.
var debtCategories = map[model.DebtType]string{
	model.DebtCreditCard:  CategoryOpenAccount,
	model.DebtMedical:     CategoryOpenAccount,
	model.DebtAuto:        CategoryWritten,
	model.DebtPersonal:    CategoryWritten,
	model.DebtMortgage:    CategoryWritten,
	model.DebtStudentLoan: CategoryPromissory,
}

// Category returns the contract category used to resolve a debt type.
func Category(debt model.DebtType) string {
	if c, ok := debtCategories[debt]; ok {
		return c
	}
	return CategoryWritten
}

// Resolver answers statute-of-limitations questions against an injected
// limitation table.
type Resolver struct {
	table *Table
}

// NewResolver creates a Resolver over the given table. A nil table falls
// back to the shipped defaults.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{table: table}
}

// Resolve computes the limitation outcome for one (state, debt type, DOFD)
// triple as of now. An unknown state code or unparsable DOFD yields an
// unresolved result rather than an error: the caller surfaces it as a
// non-fatal state.
func (r *Resolver) Resolve(stateCode string, debt model.DebtType, dofd string, now time.Time) model.SOLResult {
	limits, ok := r.table.Lookup(stateCode)
	if !ok {
		return model.SOLResult{Resolved: false, StateCode: stateCode}
	}
	start, ok := model.ParseDate(dofd)
	if !ok {
		return model.SOLResult{Resolved: false, StateCode: stateCode}
	}

	category := Category(debt)
	years := limits.years(category)
	expiration := start.AddDate(years, 0, 0)
	daysRemaining := int(expiration.Sub(now).Hours() / 24)

	status := model.SOLActive
	switch {
	case daysRemaining <= 0:
		status = model.SOLExpired
	case daysRemaining <= expiringSoonDays:
		status = model.SOLExpiringSoon
	}

	return model.SOLResult{
		Resolved:           true,
		StateCode:          stateCode,
		Category:           category,
		SOLYears:           years,
		SOLExpiration:      expiration,
		IsExpired:          status == model.SOLExpired,
		DaysRemaining:      daysRemaining,
		Status:             status,
		LegalImplications:  implications[status],
		RecommendedActions: actions[status],
	}
}

func (l Limits) years(category string) int {
	switch category {
	case CategoryOral:
		return l.Oral
	case CategoryPromissory:
		return l.Promissory
	case CategoryOpenAccount:
		return l.OpenAccount
	default:
		return l.Written
	}
}

// Static implication and action text keyed by status. Informational only;
// not legal advice.
var implications = map[model.SOLStatus][]string{
	model.SOLExpired: {
		"The limitation period to sue on this debt has run.",
		"A lawsuit filed now is subject to a statute-of-limitations defense.",
		"A partial payment or written acknowledgment may restart the clock in some states.",
	},
	model.SOLExpiringSoon: {
		"The limitation period runs out within six months.",
		"Collection pressure often increases as the window closes.",
	},
	model.SOLActive: {
		"The creditor may still sue to collect within the limitation period.",
	},
}

var actions = map[model.SOLStatus][]string{
	model.SOLExpired: {
		"Do not make a payment or acknowledge the debt in writing before getting advice.",
		"Raise the expired limitation period in response to any collection suit.",
	},
	model.SOLExpiringSoon: {
		"Avoid actions that could restart the limitation clock.",
		"Document all collection contact during this window.",
	},
	model.SOLActive: {
		"Verify the DOFD before negotiating; it anchors the limitation period.",
	},
}
