package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NotReported is the display value used for an absent field so that a value
// appearing or disappearing between two pulls is itself a detectable change.
const NotReported = "Not Reported"

// dateLayouts lists the formats furnishers have been observed to report.
// Tried in order; first parse wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2006",
	"01/2006",
	"2006-01",
}

// ParseDate parses a furnisher-reported date string. Returns false rather
// than an error when the value is empty or matches no known layout;
// malformed dates degrade, they never fail an analysis.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NotReported) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseMoney parses a currency string as reported on a tradeline, ignoring
// symbols, separators and surrounding whitespace: "$1,240.50" parses as
// 1240.50.
// Returns false for empty or unparsable input.
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NotReported) {
		return decimal.Zero, false
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == '$' || r == ',' || r == ' ':
			// reported formatting, not value
		case r == '(' || r == ')':
			// some furnishers report credits as (123.45)
		default:
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		d = d.Neg()
	}
	return d, true
}

// Display returns the value as shown in comparisons, substituting
// NotReported for absent values.
func Display(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotReported
	}
	return strings.TrimSpace(s)
}

// MonthsBetween returns the number of whole calendar months from a to b.
// Negative when b precedes a.
func MonthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months > 0 && b.Day() < a.Day() {
		months--
	}
	if months < 0 && b.Day() > a.Day() {
		months++
	}
	return months
}
