// Package confidence aggregates analysis findings and evidence readiness
// into a single bounded score that gates downstream actions.
package confidence

import (
	"math"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// Per-severity weights for the aggregate score.
const (
	highWeight      = 12
	mediumWeight    = 7
	readinessWeight = 0.5
)

// Tier thresholds on the 0-100 score.
const (
	courtReadyFloor  = 80
	reviewReadyFloor = 60
)

// Score computes the readiness score from insight severity counts and the
// externally supplied evidence-readiness percentage. Total, stateless
// function: output is always clamped to [0,100] for non-negative inputs.
func Score(highCount, mediumCount int, readiness float64) model.ConfidenceScore {
	raw := float64(highCount)*highWeight + float64(mediumCount)*mediumWeight + readiness*readinessWeight
	score := int(math.Round(raw))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	tier := model.TierNeedsEvidence
	switch {
	case score >= courtReadyFloor:
		tier = model.TierCourtReady
	case score >= reviewReadyFloor:
		tier = model.TierReviewReady
	}
	return model.ConfidenceScore{Score: score, Tier: tier}
}

// Per-insight base confidence by severity.
var severityBase = map[model.Severity]int{
	model.SeverityHigh:   90,
	model.SeverityMedium: 70,
	model.SeverityLow:    50,
}

// InsightContribution returns the confidence carried by a single insight:
// a severity base boosted by evidence-readiness tiers and clamped to 100.
func InsightContribution(severity model.Severity, readiness float64) int {
	base := severityBase[severity]
	switch {
	case readiness >= 75:
		base += 8
	case readiness >= 50:
		base += 4
	}
	if base > 100 {
		base = 100
	}
	return base
}
