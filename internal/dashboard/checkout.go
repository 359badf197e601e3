package dashboard

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/kramaapi"
	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/money"
)

var (
	ErrNothingDue       = errors.New("no outstanding billing to pay")
	ErrBusy             = errors.New("a request is still in progress")
	ErrProposalNotFound = errors.New("checkout proposal not found")
	ErrProposalExpired  = errors.New("checkout proposal expired")
)

var messages = map[error]string{
	ErrNothingDue:       "Tidak ada tagihan aktif yang harus dibayar.",
	ErrBusy:             "Permintaan sebelumnya masih diproses.",
	ErrProposalNotFound: "Konfirmasi pembayaran tidak ditemukan.",
	ErrProposalExpired:  "Konfirmasi pembayaran sudah kedaluwarsa. Silakan ulangi checkout.",
}

// Message returns the staff-facing text for err.
func Message(err error) string {
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return kramaapi.Message(err)
}

// Proposal is the first phase of a checkout: the amount and tagihan staff
// are asked to confirm. Only the latest proposal of a State is valid.
type Proposal struct {
	ID        string
	BillingID int64
	MemberID  string
	Amount    decimal.Decimal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Prompt is the question staff answer to confirm the proposal.
func (p *Proposal) Prompt(f *money.Formatter) string {
	return "Konfirmasi pembayaran " + f.Format(p.Amount) + " untuk tagihan ID " + strconv.FormatInt(p.BillingID, 10) + "?"
}

// ProposeCheckout prepares a payment of the full outstanding total. No
// network call is made; ErrNothingDue is returned when there is no tagihan
// or it totals zero.
func (s *State) ProposeCheckout() (*Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight > 0 {
		return nil, ErrBusy
	}
	if s.billing == nil || !s.billing.Total().IsPositive() {
		return nil, ErrNothingDue
	}

	now := s.now()
	p := &Proposal{
		ID:        uuid.New().String(),
		BillingID: s.billing.ID,
		Amount:    s.billing.Total(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.proposalTTL),
	}
	if s.member != nil {
		p.MemberID = s.member.ID
	}
	s.proposal = p

	out := *p
	return &out, nil
}

// ConfirmCheckout is the second phase: it pays the proposal identified by
// proposalID. A proposal can be confirmed once.
func (s *State) ConfirmCheckout(ctx context.Context, proposalID string) (*models.PaymentReceipt, error) {
	s.mu.Lock()
	p := s.proposal
	if p == nil || p.ID != proposalID {
		s.mu.Unlock()
		return nil, ErrProposalNotFound
	}
	s.proposal = nil
	expired := !s.now().Before(p.ExpiresAt)
	s.mu.Unlock()

	if expired {
		return nil, ErrProposalExpired
	}

	s.logger.Info("Checkout confirmed",
		"proposal_id", p.ID,
		"billing_id", p.BillingID,
		"member_id", p.MemberID,
		"amount", p.Amount.String(),
		"staff_id", s.identity.StaffID,
	)
	return s.ProcessPayment(ctx, p.BillingID, p.Amount)
}

// CancelCheckout drops the pending proposal if it matches proposalID.
func (s *State) CancelCheckout(proposalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proposal == nil || s.proposal.ID != proposalID {
		return false
	}
	s.proposal = nil
	return true
}
