package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_MappingKey(t *testing.T) {
	tests := []struct {
		name        string
		reference   string
		description string
		want        string
	}{
		{
			name:      "reference is trimmed and upper-cased",
			reference: "  Tele2  ",
			want:      "TELE2",
		},
		{
			name:        "empty reference falls back to description",
			description: "  Netflix Subscription  ",
			want:        "NETFLIX SUBSCRIPTION",
		},
		{
			name:        "blank reference falls back to description",
			reference:   "   ",
			description: "hyra mars",
			want:        "HYRA MARS",
		},
		{
			name:        "swedish letters are upper-cased",
			reference:   "lön",
			description: "ignored",
			want:        "LÖN",
		},
		{
			name: "both empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Reference: tt.reference, Description: tt.description}
			assert.Equal(t, tt.want, txn.MappingKey())
		})
	}
}

func TestTransaction_Sign(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		wantAbs     string
		wantIncome  bool
		wantExpense bool
	}{
		{name: "positive is income", amount: "25000.00", wantIncome: true, wantAbs: "25000"},
		{name: "negative is expense", amount: "-245.50", wantExpense: true, wantAbs: "245.5"},
		{name: "zero is neither", amount: "0", wantAbs: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Amount: decimal.RequireFromString(tt.amount)}
			assert.Equal(t, tt.wantIncome, txn.IsIncome())
			assert.Equal(t, tt.wantExpense, txn.IsExpense())
			assert.True(t, txn.AbsoluteAmount().Equal(decimal.RequireFromString(tt.wantAbs)))
			assert.False(t, txn.AbsoluteAmount().IsNegative())
		})
	}
}

func TestTransaction_DateParts(t *testing.T) {
	txn := Transaction{BookingDate: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 2024, txn.Year())
	assert.Equal(t, 3, txn.Month())
	assert.True(t, txn.HasBookingDate())

	var sentinel Transaction
	assert.False(t, sentinel.HasBookingDate())
	assert.Equal(t, 1, sentinel.Month())
}

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		BookingDate:    time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("-100.5"),
		Reference:      "ICA",
		ClearingNumber: "8327-9",
		AccountNumber:  "123456789",
	}

	same := base
	same.Description = "different description does not matter"
	same.Amount = decimal.RequireFromString("-100.50")
	assert.Equal(t, base.GenerateHash(), same.GenerateHash())

	other := base
	other.Amount = decimal.RequireFromString("-100.51")
	assert.NotEqual(t, base.GenerateHash(), other.GenerateHash())
	assert.Len(t, base.GenerateHash(), 64)
}
