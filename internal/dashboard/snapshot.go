package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/models"
)

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Member  *models.Member
	Billing *models.BillingRecord

	// Total is the sum of Billing's due categories, zero without Billing.
	Total decimal.Decimal

	Busy  bool
	Error string

	// Proposal is the pending checkout, if one is awaiting confirmation.
	Proposal *Proposal
}

// HasOutstanding reports whether there is a tagihan to pay: a member is
// loaded and its outstanding record totals more than zero.
func (s Snapshot) HasOutstanding() bool {
	return s.Member != nil && s.Billing != nil && s.Total.IsPositive()
}

// FullyPaid reports whether the loaded member has nothing outstanding.
func (s Snapshot) FullyPaid() bool {
	return s.Member != nil && s.Billing == nil
}
