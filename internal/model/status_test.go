package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		label string
		want  AccountStatus
	}{
		{"Current", StatusCurrent},
		{"Pays as Agreed", StatusCurrent},
		{"charge off", StatusChargeOff},
		{"Charged Off", StatusChargeOff},
		{"Sold to Collections", StatusCollection},
		{"Paid in Full", StatusPaid},
		{"Settled for Less", StatusSettled},
		{"Discharged in Bankruptcy", StatusDischarged},
		{"Balance Owed", StatusBalanceOwed},
		{"Consumer disputes this account", StatusDisputed},
		{"90 Days Late", StatusLate},

		// Fallback matches for labels outside the exact table.
		{"Paid charge off", StatusPaid},
		{"legally paid in full for less than full balance", StatusPaid},
		{"seriously delinquent", StatusLate},
		{"placed for collection", StatusCollection},

		{"", StatusUnknown},
		{"transferred", StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.label))
		})
	}
}
