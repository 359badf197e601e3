// Package dashboard holds the application state behind one staff session:
// the member on screen, their outstanding tagihan, and the checkout flow.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/kramaapi"
	"github.com/krama-desa/iuran/internal/metrics"
	"github.com/krama-desa/iuran/internal/models"
)

// Backend is the remote service a State reads from and pays into.
// *kramaapi.Client implements it.
type Backend interface {
	FetchDetail(ctx context.Context, identifier string) (*models.Detail, error)
	SubmitPayment(ctx context.Context, billingID int64, amount decimal.Decimal, opts ...kramaapi.PaymentOption) (*models.PaymentReceipt, error)
}

// Journal records payment submissions for audit.
type Journal interface {
	AppendJournal(ctx context.Context, entry *models.JournalEntry) error
}

// Identity is the staff member a State acts for.
type Identity struct {
	StaffID string

	// RecordedBy is sent as recorded_by. Zero keeps the client default.
	RecordedBy int64
}

// DefaultProposalTTL bounds how long a checkout proposal can be confirmed.
const DefaultProposalTTL = 2 * time.Minute

// State is the application state container of one session.
//
// The mutex is never held across backend calls. Each FetchDetail takes a
// sequence number and only the most recently issued one may apply its
// result; responses to superseded lookups are dropped.
type State struct {
	backend     Backend
	journal     Journal
	identity    Identity
	metrics     *metrics.Collector
	logger      *slog.Logger
	now         func() time.Time
	proposalTTL time.Duration

	mu       sync.Mutex
	member   *models.Member
	billing  *models.BillingRecord
	errMsg   string
	inFlight int
	issued   uint64
	proposal *Proposal
}

// Option configures a State.
type Option func(*State)

func WithJournal(j Journal) Option {
	return func(s *State) { s.journal = j }
}

func WithIdentity(id Identity) Option {
	return func(s *State) { s.identity = id }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *State) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithProposalTTL(d time.Duration) Option {
	return func(s *State) { s.proposalTTL = d }
}

// New creates an empty State bound to backend.
func New(backend Backend, opts ...Option) *State {
	s := &State{
		backend:     backend,
		logger:      slog.Default(),
		now:         time.Now,
		proposalTTL: DefaultProposalTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the staff identity of the State.
func (s *State) Identity() Identity {
	return s.identity
}

// FetchDetail replaces the displayed member and tagihan with the result of
// looking up identifier. Prior member, tagihan and error are cleared when
// the lookup starts. On failure the error message is kept in the state and
// the error is also returned.
func (s *State) FetchDetail(ctx context.Context, identifier string) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inFlight++
	s.errMsg = ""
	s.member = nil
	s.billing = nil
	s.proposal = nil
	s.mu.Unlock()

	detail, err := s.backend.FetchDetail(ctx, identifier)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	if seq != s.issued {
		s.logger.Debug("Dropping superseded lookup", "identifier", identifier, "seq", seq, "latest", s.issued)
		return err
	}
	if err != nil {
		s.errMsg = kramaapi.Message(err)
		return err
	}
	s.member = detail.Member
	s.billing = detail.Billing
	return nil
}

// ProcessPayment submits a payment of amount for billingID. On success the
// current member is looked up again so the settlement status is fresh; with
// no member loaded the tagihan is simply cleared. A failure is kept in the
// state and returned.
func (s *State) ProcessPayment(ctx context.Context, billingID int64, amount decimal.Decimal) (*models.PaymentReceipt, error) {
	s.mu.Lock()
	s.inFlight++
	s.errMsg = ""
	submittedFor := ""
	if s.member != nil {
		submittedFor = s.member.ID
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	var opts []kramaapi.PaymentOption
	if s.identity.RecordedBy > 0 {
		opts = append(opts, kramaapi.WithRecordedBy(s.identity.RecordedBy))
	}

	receipt, err := s.backend.SubmitPayment(ctx, billingID, amount, opts...)
	s.record(ctx, billingID, amount, submittedFor, receipt, err)
	if err != nil {
		s.metrics.ObserveCheckout(checkoutOutcome(err))
		s.mu.Lock()
		s.errMsg = kramaapi.Message(err)
		s.mu.Unlock()
		return nil, err
	}
	s.metrics.ObserveCheckout(metrics.OutcomeOK)

	s.mu.Lock()
	refresh := ""
	if s.member != nil {
		refresh = s.member.ID
	} else {
		s.billing = nil
	}
	s.mu.Unlock()

	if refresh != "" {
		if err := s.FetchDetail(ctx, refresh); err != nil {
			s.logger.Warn("Refresh after payment failed", "member_id", refresh, "error", err)
		}
	}
	return receipt, nil
}

// Snapshot returns a copy of the state for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Busy:  s.inFlight > 0,
		Error: s.errMsg,
	}
	if s.member != nil {
		m := *s.member
		snap.Member = &m
	}
	if s.billing != nil {
		b := *s.billing
		snap.Billing = &b
		snap.Total = b.Total()
	}
	if s.proposal != nil && s.now().Before(s.proposal.ExpiresAt) {
		p := *s.proposal
		snap.Proposal = &p
	}
	return snap
}

// ClearError drops the current error message.
func (s *State) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *State) record(ctx context.Context, billingID int64, amount decimal.Decimal, memberID string, receipt *models.PaymentReceipt, err error) {
	if s.journal == nil {
		return
	}

	entry := &models.JournalEntry{
		ID:         uuid.New().String(),
		BillingID:  billingID,
		MemberID:   memberID,
		Amount:     amount,
		RecordedBy: s.identity.RecordedBy,
		StaffID:    s.identity.StaffID,
		CreatedAt:  s.now().Unix(),
	}
	if err != nil {
		entry.Outcome = models.JournalFailed
		entry.Message = kramaapi.Message(err)
	} else {
		entry.Outcome = models.JournalSucceeded
		entry.Message = receipt.Message
		entry.IdempotencyKey = receipt.IdempotencyKey
		entry.Method = receipt.Record.Method
		entry.Note = receipt.Record.Note
		entry.RecordedBy = receipt.Record.RecordedBy
	}

	if err := s.journal.AppendJournal(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("Failed to journal payment", "billing_id", billingID, "outcome", entry.Outcome, "error", err)
	}
}

func checkoutOutcome(err error) string {
	var valErr *kramaapi.ValidationError
	if errors.As(err, &valErr) {
		return metrics.OutcomeInvalid
	}
	var reqErr *kramaapi.RequestError
	if errors.As(err, &reqErr) && reqErr.Transport() {
		return metrics.OutcomeTransportError
	}
	return metrics.OutcomeBackendError
}
