package service

import (
	"github.com/shopspring/decimal"
)

// Staff is the public view of a staff account.
type Staff struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	BackendID   int64  `json:"backend_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ExpiresAt int64  `json:"expires_at"`
	Staff     *Staff `json:"staff"`
}

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Dues amounts are decimal strings; the Display fields are formatted for
// the dashboard locale.
type Dues struct {
	Base               decimal.Decimal `json:"base"`
	Development        decimal.Decimal `json:"development"`
	Social             decimal.Decimal `json:"social"`
	BaseDisplay        string          `json:"base_display"`
	DevelopmentDisplay string          `json:"development_display"`
	SocialDisplay      string          `json:"social_display"`
}

type Billing struct {
	ID        int64  `json:"id"`
	IssueDate string `json:"issue_date,omitempty"`
	Status    string `json:"status"`
	Dues      Dues   `json:"dues"`
}

type Proposal struct {
	ID            string          `json:"id"`
	BillingID     int64           `json:"billing_id"`
	MemberID      string          `json:"member_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
	Prompt        string          `json:"prompt"`
	ExpiresAt     int64           `json:"expires_at"`
}

type Snapshot struct {
	Member       *Member         `json:"member,omitempty"`
	Billing      *Billing        `json:"billing,omitempty"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	FullyPaid    bool            `json:"fully_paid"`
	Busy         bool            `json:"busy"`
	Error        string          `json:"error,omitempty"`
	Proposal     *Proposal       `json:"proposal,omitempty"`
}

type FetchDetailRequest struct {
	Identifier string `json:"identifier"`
}

type FetchDetailResponse struct {
	Snapshot *Snapshot `json:"snapshot"`
}

type GetSnapshotRequest struct{}

type GetSnapshotResponse struct {
	Snapshot *Snapshot `json:"snapshot"`
}

type ProposeCheckoutRequest struct{}

type ProposeCheckoutResponse struct {
	Proposal *Proposal `json:"proposal"`
}

type ConfirmCheckoutRequest struct {
	ProposalID string `json:"proposal_id"`
}

type ConfirmCheckoutResponse struct {
	Message        string    `json:"message"`
	IdempotencyKey string    `json:"idempotency_key"`
	Snapshot       *Snapshot `json:"snapshot"`
}

type CancelCheckoutRequest struct {
	ProposalID string `json:"proposal_id"`
}

type CancelCheckoutResponse struct {
	Cancelled bool `json:"cancelled"`
}

type EndSessionRequest struct{}

type EndSessionResponse struct{}
