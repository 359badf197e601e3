package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/krama-desa/iuran/internal/auth"
	"github.com/krama-desa/iuran/internal/dashboard"
	"github.com/krama-desa/iuran/internal/kramaapi"
	"github.com/krama-desa/iuran/internal/middleware"
	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/money"
)

// DashboardService exposes the per-session dashboard state over RPC. Every
// call must pass through middleware.RequireAuth.
type DashboardService struct {
	registry  *dashboard.Registry
	formatter *money.Formatter
	logger    *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(registry *dashboard.Registry, formatter *money.Formatter, logger *slog.Logger) *DashboardService {
	if formatter == nil {
		formatter = money.Rupiah()
	}
	return &DashboardService{
		registry:  registry,
		formatter: formatter,
		logger:    logger,
	}
}

func (s *DashboardService) state(ctx context.Context) (*dashboard.State, error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return s.registry.Get(claims.SessionID, dashboard.Identity{
		StaffID:    claims.StaffID,
		RecordedBy: claims.BackendID,
	}), nil
}

// FetchDetail looks up a krama and returns the refreshed snapshot.
func (s *DashboardService) FetchDetail(ctx context.Context, req *connect.Request[FetchDetailRequest]) (*connect.Response[FetchDetailResponse], error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}

	if err := state.FetchDetail(ctx, req.Msg.Identifier); err != nil {
		s.logger.Warn("FetchDetail failed", "identifier", req.Msg.Identifier, "error", err)
		return nil, toConnectError(err)
	}

	snap := state.Snapshot()
	return connect.NewResponse(&FetchDetailResponse{Snapshot: s.toSnapshot(snap)}), nil
}

// GetSnapshot returns the current state of the session.
func (s *DashboardService) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetSnapshotResponse{Snapshot: s.toSnapshot(state.Snapshot())}), nil
}

// ProposeCheckout prepares payment of the loaded tagihan.
func (s *DashboardService) ProposeCheckout(ctx context.Context, req *connect.Request[ProposeCheckoutRequest]) (*connect.Response[ProposeCheckoutResponse], error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}

	proposal, err := state.ProposeCheckout()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ProposeCheckoutResponse{Proposal: s.toProposal(proposal)}), nil
}

// ConfirmCheckout pays a proposal. The payment is not cancelled when the
// caller goes away.
func (s *DashboardService) ConfirmCheckout(ctx context.Context, req *connect.Request[ConfirmCheckoutRequest]) (*connect.Response[ConfirmCheckoutResponse], error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ProposalID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("proposal_id is required"))
	}

	receipt, err := state.ConfirmCheckout(context.WithoutCancel(ctx), req.Msg.ProposalID)
	if err != nil {
		s.logger.Warn("ConfirmCheckout failed", "proposal_id", req.Msg.ProposalID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&ConfirmCheckoutResponse{
		Message:        receipt.Message,
		IdempotencyKey: receipt.IdempotencyKey,
		Snapshot:       s.toSnapshot(state.Snapshot()),
	}), nil
}

// CancelCheckout drops a pending proposal.
func (s *DashboardService) CancelCheckout(ctx context.Context, req *connect.Request[CancelCheckoutRequest]) (*connect.Response[CancelCheckoutResponse], error) {
	state, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CancelCheckoutResponse{Cancelled: state.CancelCheckout(req.Msg.ProposalID)}), nil
}

// EndSession forgets the caller's dashboard state.
func (s *DashboardService) EndSession(ctx context.Context, req *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	s.registry.Drop(claims.SessionID)
	s.logger.Info("Session ended", "staff_id", claims.StaffID, "session_id", claims.SessionID)
	return connect.NewResponse(&EndSessionResponse{}), nil
}

func (s *DashboardService) toSnapshot(snap dashboard.Snapshot) *Snapshot {
	out := &Snapshot{
		Total:        snap.Total,
		TotalDisplay: s.formatter.Format(snap.Total),
		FullyPaid:    snap.FullyPaid(),
		Busy:         snap.Busy,
		Error:        snap.Error,
	}
	if snap.Member != nil {
		out.Member = &Member{ID: snap.Member.ID, Name: snap.Member.Name, Status: snap.Member.Status}
	}
	if snap.Billing != nil {
		out.Billing = s.toBilling(snap.Billing)
	}
	if snap.Proposal != nil {
		out.Proposal = s.toProposal(snap.Proposal)
	}
	return out
}

func (s *DashboardService) toBilling(b *models.BillingRecord) *Billing {
	out := &Billing{
		ID:     b.ID,
		Status: string(b.Status),
		Dues: Dues{
			Base:               b.Dues.Base,
			Development:        b.Dues.Development,
			Social:             b.Dues.Social,
			BaseDisplay:        s.formatter.Format(b.Dues.Base),
			DevelopmentDisplay: s.formatter.Format(b.Dues.Development),
			SocialDisplay:      s.formatter.Format(b.Dues.Social),
		},
	}
	if !b.IssueDate.IsZero() {
		out.IssueDate = b.IssueDate.Format("2006-01-02")
	}
	return out
}

func (s *DashboardService) toProposal(p *dashboard.Proposal) *Proposal {
	return &Proposal{
		ID:            p.ID,
		BillingID:     p.BillingID,
		MemberID:      p.MemberID,
		Amount:        p.Amount,
		AmountDisplay: s.formatter.Format(p.Amount),
		Prompt:        p.Prompt(s.formatter),
		ExpiresAt:     p.ExpiresAt.Unix(),
	}
}

// toConnectError maps dashboard and backend failures to RPC codes. The
// error message is the staff-facing text.
func toConnectError(err error) *connect.Error {
	msg := errors.New(dashboard.Message(err))

	switch {
	case errors.Is(err, dashboard.ErrProposalNotFound):
		return connect.NewError(connect.CodeNotFound, msg)
	case errors.Is(err, dashboard.ErrNothingDue), errors.Is(err, dashboard.ErrProposalExpired):
		return connect.NewError(connect.CodeFailedPrecondition, msg)
	case errors.Is(err, dashboard.ErrBusy):
		return connect.NewError(connect.CodeAborted, msg)
	case errors.Is(err, kramaapi.ErrEmptyIdentifier):
		return connect.NewError(connect.CodeInvalidArgument, msg)
	}

	var valErr *kramaapi.ValidationError
	if errors.As(err, &valErr) {
		return connect.NewError(connect.CodeInvalidArgument, msg)
	}
	var reqErr *kramaapi.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Transport() {
			return connect.NewError(connect.CodeUnavailable, msg)
		}
		return connect.NewError(connect.CodeFailedPrecondition, msg)
	}
	return connect.NewError(connect.CodeInternal, msg)
}
