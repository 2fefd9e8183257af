package model

import "time"

// Impact classifies the direction of a single field change for the consumer.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Delta is one changed field between two snapshots of the same tradeline.
type Delta struct {
	Field       string `json:"field"`
	OldValue    string `json:"old_value"`
	NewValue    string `json:"new_value"`
	Impact      Impact `json:"impact"`
	Description string `json:"description"`
}

// InsightType names a cross-snapshot pattern the synthesizer can detect.
type InsightType string

const (
	InsightReaging          InsightType = "reaging"
	InsightRemovalExtension InsightType = "removal_extension"
	InsightValueShift       InsightType = "value_shift"
	InsightStatusFlip       InsightType = "status_flip"
	InsightReportingShift   InsightType = "reporting_shift"
)

// Severity ranks a series insight.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank returns the sort rank of a severity, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Insight is one detected cross-snapshot pattern. Every insight cites at
// least one piece of evidence naming the supporting fields and snapshots.
type Insight struct {
	ID         string      `json:"id"`
	Type       InsightType `json:"type"`
	Severity   Severity    `json:"severity"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Evidence   []string    `json:"evidence"`
	Confidence int         `json:"confidence"`
}

// IssueSeverity ranks a timeline consistency issue.
type IssueSeverity string

const (
	IssueBlocking IssueSeverity = "blocking"
	IssueWarning  IssueSeverity = "warning"
)

// TimelineIssue is one violated ordering invariant within a single snapshot.
// Field, when set, names the snapshot field for UI focus targeting.
type TimelineIssue struct {
	ID          string        `json:"id"`
	Severity    IssueSeverity `json:"severity"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Field       string        `json:"field,omitempty"`
}

// SOLStatus describes where a debt sits relative to its limitation period.
type SOLStatus string

const (
	SOLExpired      SOLStatus = "expired"
	SOLExpiringSoon SOLStatus = "expiring_soon"
	SOLActive       SOLStatus = "active"
)

// SOLResult is the resolved statute-of-limitations outcome for one
// (state, debt type, DOFD) triple. Resolved is false when the state code
// is unknown or the DOFD does not parse; the zero values of the remaining
// fields carry no meaning in that case.
type SOLResult struct {
	Resolved           bool      `json:"resolved"`
	StateCode          string    `json:"state_code"`
	Category           string    `json:"category"`
	SOLYears           int       `json:"sol_years"`
	SOLExpiration      time.Time `json:"sol_expiration"`
	IsExpired          bool      `json:"is_expired"`
	DaysRemaining      int       `json:"days_remaining"`
	Status             SOLStatus `json:"status"`
	LegalImplications  []string  `json:"legal_implications"`
	RecommendedActions []string  `json:"recommended_actions"`
}

// ConfidenceTier gates downstream actions on the aggregate score.
type ConfidenceTier string

const (
	TierCourtReady    ConfidenceTier = "court_ready"
	TierReviewReady   ConfidenceTier = "review_ready"
	TierNeedsEvidence ConfidenceTier = "needs_evidence"
)

// ConfidenceScore is the bounded readiness score in [0,100] plus its tier.
type ConfidenceScore struct {
	Score int            `json:"score"`
	Tier  ConfidenceTier `json:"tier"`
}
