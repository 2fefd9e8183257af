package model

import "time"

// Bureau identifies a credit bureau furnishing a tradeline.
type Bureau string

const (
	BureauExperian   Bureau = "experian"
	BureauEquifax    Bureau = "equifax"
	BureauTransUnion Bureau = "transunion"
)

// AllBureaus returns the known bureaus.
func AllBureaus() []Bureau {
	return []Bureau{BureauExperian, BureauEquifax, BureauTransUnion}
}

// DebtType classifies the kind of debt on a tradeline.
type DebtType string

const (
	DebtCreditCard  DebtType = "credit_card"
	DebtMedical     DebtType = "medical"
	DebtAuto        DebtType = "auto"
	DebtPersonal    DebtType = "personal"
	DebtMortgage    DebtType = "mortgage"
	DebtStudentLoan DebtType = "student_loan"
	DebtUnknown     DebtType = "unknown"
)

// Snapshot is one point-in-time reading of a single tradeline, parsed from
// a report pull by the ingestion layer. Date fields are kept as the raw
// strings the furnisher reported; they are parsed on demand because the
// data is third-party and frequently malformed. A Snapshot is immutable
// once produced; every component reads it, none mutates it.
type Snapshot struct {
	AccountName      string   `json:"account_name,omitempty"`
	AccountNumber    string   `json:"account_number,omitempty"`
	DateOpened       string   `json:"date_opened,omitempty"`
	DOFD             string   `json:"dofd,omitempty"`
	ChargeOffDate    string   `json:"charge_off_date,omitempty"`
	DateLastPayment  string   `json:"date_last_payment,omitempty"`
	DateReported     string   `json:"date_reported,omitempty"`
	EstimatedRemoval string   `json:"estimated_removal_date,omitempty"`
	Balance          string   `json:"balance,omitempty"`
	AccountStatus    string   `json:"account_status,omitempty"`
	Bureau           Bureau   `json:"bureau,omitempty"`
	StateCode        string   `json:"state_code,omitempty"`
	DebtType         DebtType `json:"debt_type,omitempty"`
}

// SeriesSnapshot is a Snapshot tagged with its position in a comparison
// series: a human label ("Pull #3"), the pull timestamp used for
// chronological ordering, and whether it is the most recent reading.
type SeriesSnapshot struct {
	Snapshot
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Current   bool      `json:"current"`
}
