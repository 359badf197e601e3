package web

import (
	"time"

	"github.com/krama-desa/iuran/internal/dashboard"
	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/money"
)

const (
	badgeSettled = "Selesai (LUNAS)"
	badgePending = "Tertunda (BELUM LUNAS)"
)

type categoryCard struct {
	Label  string
	Amount string
}

type notificationView struct {
	Message     string
	Kind        NotificationKind
	RemainingMs int64
}

type confirmView struct {
	ProposalID string
	Prompt     string
}

type memberView struct {
	ID     string
	Name   string
	Status string
}

type billingView struct {
	ID        int64
	IssueDate string
	Cards     []categoryCard
	Total     string
	Badge     string
	Settled   bool
}

type dashboardPage struct {
	StaffName    string
	Query        string
	Notification *notificationView
	Busy         bool
	Member       *memberView
	Billing      *billingView
	FullyPaid    bool
	Confirm      *confirmView
}

type loginPage struct {
	Email   string
	Error   string
	Expired bool
}

func newDashboardPage(staffName, query string, snap dashboard.Snapshot, note *Notification, remaining time.Duration, f *money.Formatter) dashboardPage {
	page := dashboardPage{
		StaffName: staffName,
		Query:     query,
		Busy:      snap.Busy,
		FullyPaid: snap.FullyPaid(),
	}
	if note != nil {
		page.Notification = &notificationView{
			Message:     note.Message,
			Kind:        note.Kind,
			RemainingMs: remaining.Milliseconds(),
		}
	}
	if snap.Member != nil {
		page.Member = &memberView{ID: snap.Member.ID, Name: snap.Member.Name, Status: snap.Member.Status}
	}
	if snap.HasOutstanding() {
		page.Billing = newBillingView(snap.Billing, f)
	}
	if snap.Proposal != nil && page.Billing != nil {
		page.Confirm = &confirmView{
			ProposalID: snap.Proposal.ID,
			Prompt:     snap.Proposal.Prompt(f),
		}
	}
	return page
}

func newBillingView(b *models.BillingRecord, f *money.Formatter) *billingView {
	v := &billingView{
		ID: b.ID,
		Cards: []categoryCard{
			{Label: "Iuran Pokok Krama", Amount: f.Format(b.Dues.Base)},
			{Label: "Dana Pembangunan (Dedosar)", Amount: f.Format(b.Dues.Development)},
			{Label: "Kas Sosial (Peturunan)", Amount: f.Format(b.Dues.Social)},
		},
		Total:   f.Format(b.Total()),
		Badge:   badgePending,
		Settled: b.Status == models.BillingCompleted,
	}
	if v.Settled {
		v.Badge = badgeSettled
	}
	if !b.IssueDate.IsZero() {
		v.IssueDate = b.IssueDate.Format("02-01-2006")
	}
	return v
}
