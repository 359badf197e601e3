package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PaymentRecord is a pembayaran created by the dashboard at checkout.
// It is persisted by the backend; the dashboard never reads it back and
// re-fetches the member instead.
type PaymentRecord struct {
	BillingID int64
	Amount    decimal.Decimal

	// Method is the payment channel, e.g. "Transfer Bank".
	Method string

	// Note is a free-text remark. New payments are recorded as "pending"
	// until an administrator settles them on the backend.
	Note string

	// RecordedBy is the backend identifier of the staff member who took
	// the payment.
	RecordedBy int64
}

// PaymentReceipt is the backend's confirmation of a PaymentRecord.
type PaymentReceipt struct {
	// Message is the human-readable confirmation, if the backend sent one.
	Message string

	// IdempotencyKey is the key the submission was sent with.
	IdempotencyKey string

	// Record is the payment as it was submitted.
	Record PaymentRecord

	// Data is the raw response body.
	Data json.RawMessage
}
