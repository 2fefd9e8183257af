package sol

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tradeline-audit/internal/model"
)

var testNow = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func TestResolveExpiredCaliforniaCreditCard(t *testing.T) {
	r := NewResolver(nil)

	// CA treats credit cards as open accounts: 4 years. A DOFD six years
	// back is well past the window.
	res := r.Resolve("CA", model.DebtCreditCard, "2019-01-15", testNow)
	require.True(t, res.Resolved)
	assert.Equal(t, "CA", res.StateCode)
	assert.Equal(t, CategoryOpenAccount, res.Category)
	assert.Equal(t, 4, res.SOLYears)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), res.SOLExpiration)
	assert.True(t, res.IsExpired)
	assert.Equal(t, model.SOLExpired, res.Status)
	assert.LessOrEqual(t, res.DaysRemaining, 0)
	assert.NotEmpty(t, res.LegalImplications)
	assert.NotEmpty(t, res.RecommendedActions)
}

func TestResolveActive(t *testing.T) {
	r := NewResolver(nil)

	// NY written contract: 6 years. A fresh DOFD leaves years remaining.
	res := r.Resolve("NY", model.DebtAuto, "2024-06-01", testNow)
	require.True(t, res.Resolved)
	assert.Equal(t, CategoryWritten, res.Category)
	assert.Equal(t, 6, res.SOLYears)
	assert.Equal(t, model.SOLActive, res.Status)
	assert.False(t, res.IsExpired)
	assert.Greater(t, res.DaysRemaining, 365)
}

func TestResolveExpiringSoon(t *testing.T) {
	r := NewResolver(nil)

	// TX open account: 4 years. DOFD chosen so expiration lands ~90 days
	// out, inside the 180 day expiring-soon window.
	res := r.Resolve("TX", model.DebtCreditCard, "2021-04-15", testNow)
	require.True(t, res.Resolved)
	assert.Equal(t, model.SOLExpiringSoon, res.Status)
	assert.False(t, res.IsExpired)
	assert.Greater(t, res.DaysRemaining, 0)
	assert.LessOrEqual(t, res.DaysRemaining, 180)
}

func TestResolveUnknownState(t *testing.T) {
	r := NewResolver(nil)

	res := r.Resolve("ZZ", model.DebtCreditCard, "2020-01-01", testNow)
	assert.False(t, res.Resolved)
	assert.Equal(t, "ZZ", res.StateCode)
	assert.Empty(t, res.Category)
}

func TestResolveUnparsableDOFD(t *testing.T) {
	r := NewResolver(nil)

	res := r.Resolve("CA", model.DebtCreditCard, "Not Reported", testNow)
	assert.False(t, res.Resolved)
}

func TestCategoryDefaults(t *testing.T) {
	assert.Equal(t, CategoryOpenAccount, Category(model.DebtCreditCard))
	assert.Equal(t, CategoryOpenAccount, Category(model.DebtMedical))
	assert.Equal(t, CategoryPromissory, Category(model.DebtStudentLoan))
	assert.Equal(t, CategoryWritten, Category(model.DebtMortgage))
	assert.Equal(t, CategoryWritten, Category(model.DebtUnknown))
}

func TestLookupNormalizesStateCode(t *testing.T) {
	table := DefaultTable()
	upper, ok := table.Lookup("CA")
	require.True(t, ok)
	lower, ok := table.Lookup(" ca ")
	require.True(t, ok)
	assert.Equal(t, upper, lower)
}

func TestLoadTableOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sol.yaml")
	override := `version: "2025.2-test"
states:
  ca:
    written: 10
    oral: 10
    promissory: 10
    open_account: 10
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "2025.2-test", table.Version)

	// Overridden state replaces the default entry.
	ca, ok := table.Lookup("CA")
	require.True(t, ok)
	assert.Equal(t, 10, ca.OpenAccount)

	// Untouched states keep the shipped values.
	ny, ok := table.Lookup("NY")
	require.True(t, ok)
	assert.Equal(t, 6, ny.Written)
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
