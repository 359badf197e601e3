package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillingStatus is the settlement status of a billing record.
type BillingStatus string

const (
	BillingPending   BillingStatus = "pending"
	BillingCompleted BillingStatus = "completed"
)

// ParseBillingStatus maps a backend status string to a BillingStatus.
// Anything not recognised as settled is pending.
func ParseBillingStatus(s string) BillingStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "selesai", "lunas", "paid":
		return BillingCompleted
	default:
		return BillingPending
	}
}

// DueCategories are the fixed components of a tagihan.
type DueCategories struct {
	// Base is the iuran pokok (base membership due).
	Base decimal.Decimal

	// Development is the dana pembangunan (dedosar) component.
	Development decimal.Decimal

	// Social is the kas sosial (peturunan) component.
	Social decimal.Decimal
}

// Total is the sum of the three categories.
func (d DueCategories) Total() decimal.Decimal {
	return d.Base.Add(d.Development).Add(d.Social)
}

// BillingRecord is a tagihan aggregating due categories for one period.
type BillingRecord struct {
	// ID is the positive backend identifier of the tagihan.
	ID int64

	// IssueDate is when the tagihan was issued. Zero if the backend
	// sent a date the client could not parse.
	IssueDate time.Time

	// Dues holds the itemized amounts. The amount owed is always
	// derived from it, never stored separately.
	Dues DueCategories

	Status BillingStatus
}

// Total returns the amount owed for the record.
func (b *BillingRecord) Total() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.Dues.Total()
}

// Outstanding reports whether the record still has to be paid.
func (b *BillingRecord) Outstanding() bool {
	return b != nil && b.Status != BillingCompleted
}

// Detail is what a member lookup yields: the member and at most one
// outstanding billing record. Billing is nil when everything is settled.
type Detail struct {
	Member  *Member
	Billing *BillingRecord
}
