package models

import "github.com/shopspring/decimal"

// JournalOutcome is the result of a payment submission.
type JournalOutcome string

const (
	JournalSucceeded JournalOutcome = "succeeded"
	JournalFailed    JournalOutcome = "failed"
)

// JournalEntry is the local audit row written for every payment the
// dashboard submits, whether the backend accepted it or not.
type JournalEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// IdempotencyKey is the key sent with the submission, empty when the
	// request never left the client.
	IdempotencyKey string

	BillingID int64
	MemberID  string
	Amount    decimal.Decimal
	Method    string
	Note      string

	// RecordedBy is the backend staff identifier sent with the payment.
	RecordedBy int64

	// StaffID is the local Staff.ID of the operator, if known.
	StaffID string

	Outcome JournalOutcome

	// Message is the backend confirmation or the normalized error text.
	Message string

	// CreatedAt is the Unix timestamp of the submission.
	CreatedAt int64
}
