package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single row of a bank export.
type Transaction struct {
	BookingDate     time.Time
	TransactionDate time.Time
	CurrencyDate    time.Time
	Amount          decimal.Decimal
	BookedBalance   decimal.Decimal
	ClearingNumber  string
	AccountNumber   string
	Product         string
	Currency        string
	Reference       string
	Description     string
	RowNumber       int
}

// Year returns the booking year.
func (t Transaction) Year() int {
	return t.BookingDate.Year()
}

// Month returns the booking month (1-12).
func (t Transaction) Month() int {
	return int(t.BookingDate.Month())
}

// MappingKey is the normalized text used for pattern matching: the reference
// when present, otherwise the description.
func (t Transaction) MappingKey() string {
	if ref := strings.TrimSpace(t.Reference); ref != "" {
		return strings.ToUpper(ref)
	}
	return strings.ToUpper(strings.TrimSpace(t.Description))
}

// IsIncome reports whether the amount is strictly positive.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the amount is strictly negative.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// AbsoluteAmount returns |Amount|.
func (t Transaction) AbsoluteAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// HasBookingDate is false when the booking date fell back to the zero sentinel.
func (t Transaction) HasBookingDate() bool {
	return !t.BookingDate.IsZero()
}

// GenerateHash creates a stable fingerprint for the transaction.
func (t Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.BookingDate.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.MappingKey(),
		t.ClearingNumber,
		t.AccountNumber)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
