package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krama-desa/iuran/internal/kramaapi"
	"github.com/krama-desa/iuran/internal/models"
	"github.com/krama-desa/iuran/internal/money"
)

type submittedPayment struct {
	billingID int64
	amount    decimal.Decimal
	opts      int
}

// fakeBackend serves member details from a map. Lookups for identifiers
// with a gate block until the gate is closed.
type fakeBackend struct {
	mu       sync.Mutex
	details  map[string]*models.Detail
	fetchErr error
	payErr   error
	gates    map[string]chan struct{}
	fetches  []string
	payments []submittedPayment
	onPay    func(f *fakeBackend)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		details: make(map[string]*models.Detail),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeBackend) FetchDetail(ctx context.Context, identifier string) (*models.Detail, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, identifier)
	gate := f.gates[identifier]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	d, ok := f.details[identifier]
	if !ok {
		return nil, &kramaapi.RequestError{Op: kramaapi.OpFetchDetail, Status: 404, Message: "Krama tidak ditemukan"}
	}
	out := *d
	return &out, nil
}

func (f *fakeBackend) SubmitPayment(ctx context.Context, billingID int64, amount decimal.Decimal, opts ...kramaapi.PaymentOption) (*models.PaymentReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, submittedPayment{billingID: billingID, amount: amount, opts: len(opts)})
	if f.payErr != nil {
		return nil, f.payErr
	}
	if f.onPay != nil {
		f.onPay(f)
	}
	return &models.PaymentReceipt{
		Message:        "Pembayaran berhasil disimpan",
		IdempotencyKey: "key-1",
		Record:         models.PaymentRecord{BillingID: billingID, Amount: amount, Method: "Transfer Bank", Note: "pending", RecordedBy: 9},
	}, nil
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []*models.JournalEntry
	err     error
}

func (j *memoryJournal) AppendJournal(ctx context.Context, entry *models.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return j.err
}

func wayanDetail() *models.Detail {
	return &models.Detail{
		Member: &models.Member{ID: "3201xxxx", Name: "Wayan", Status: "aktif"},
		Billing: &models.BillingRecord{
			ID:     7,
			Status: models.BillingPending,
			Dues: models.DueCategories{
				Base:        decimal.NewFromInt(100000),
				Development: decimal.NewFromInt(35000),
				Social:      decimal.NewFromInt(15000),
			},
		},
	}
}

func settle(f *fakeBackend) {
	d := *f.details["3201xxxx"]
	d.Billing = nil
	f.details["3201xxxx"] = &d
}

func TestFetchDetail_Success(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend)

	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	snap := state.Snapshot()
	require.NotNil(t, snap.Member)
	assert.Equal(t, "Wayan", snap.Member.Name)
	assert.True(t, snap.HasOutstanding())
	assert.False(t, snap.FullyPaid())
	assert.True(t, snap.Total.Equal(decimal.NewFromInt(150000)))
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.Error)
}

func TestFetchDetail_FailureClearsPriorResult(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	backend.fetchErr = &kramaapi.RequestError{Op: kramaapi.OpFetchDetail, Status: 404, Message: "X"}
	err := state.FetchDetail(context.Background(), "3201xxxx")
	require.Error(t, err)

	snap := state.Snapshot()
	assert.Nil(t, snap.Member)
	assert.Nil(t, snap.Billing)
	assert.Equal(t, "X", snap.Error)
	assert.False(t, snap.Busy)
}

func TestFetchDetail_ErrorDoesNotPoisonNextSearch(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend)

	require.Error(t, state.FetchDetail(context.Background(), "unknown"))
	assert.NotEmpty(t, state.Snapshot().Error)

	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))
	assert.Empty(t, state.Snapshot().Error)
	assert.NotNil(t, state.Snapshot().Member)
}

func TestFetchDetail_AllSettled(t *testing.T) {
	backend := newFakeBackend()
	backend.details["5"] = &models.Detail{Member: &models.Member{ID: "5", Name: "Ketut"}}
	state := New(backend)

	require.NoError(t, state.FetchDetail(context.Background(), "5"))
	snap := state.Snapshot()
	assert.True(t, snap.FullyPaid())
	assert.False(t, snap.HasOutstanding())
	assert.True(t, snap.Total.IsZero())
}

func TestFetchDetail_SupersededResponseDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.details["slow"] = &models.Detail{Member: &models.Member{ID: "slow", Name: "Lambat"}}
	backend.details["fast"] = &models.Detail{Member: &models.Member{ID: "fast", Name: "Cepat"}}
	gate := make(chan struct{})
	backend.gates["slow"] = gate
	state := New(backend)

	done := make(chan error, 1)
	go func() { done <- state.FetchDetail(context.Background(), "slow") }()

	require.Eventually(t, func() bool { return backend.fetchCount() == 1 }, time.Second, time.Millisecond)
	assert.True(t, state.Snapshot().Busy)

	require.NoError(t, state.FetchDetail(context.Background(), "fast"))
	assert.True(t, state.Snapshot().Busy, "slow lookup is still in flight")

	close(gate)
	require.NoError(t, <-done)

	snap := state.Snapshot()
	require.NotNil(t, snap.Member)
	assert.Equal(t, "fast", snap.Member.ID, "the later search must win")
	assert.False(t, snap.Busy)
}

func TestProcessPayment_RefetchesSameMemberOnce(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	backend.onPay = settle
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	receipt, err := state.ProcessPayment(context.Background(), 7, decimal.NewFromInt(150000))
	require.NoError(t, err)
	assert.Equal(t, "Pembayaran berhasil disimpan", receipt.Message)

	assert.Equal(t, []string{"3201xxxx", "3201xxxx"}, backend.fetches)
	require.Len(t, backend.payments, 1)
	assert.Equal(t, int64(7), backend.payments[0].billingID)
	assert.True(t, backend.payments[0].amount.Equal(decimal.NewFromInt(150000)))

	snap := state.Snapshot()
	assert.True(t, snap.FullyPaid())
	assert.False(t, snap.Busy)
}

func TestProcessPayment_WithoutMemberClearsBilling(t *testing.T) {
	backend := newFakeBackend()
	backend.details["tagihan-7"] = &models.Detail{Billing: wayanDetail().Billing}
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "tagihan-7"))
	require.NotNil(t, state.Snapshot().Billing)

	_, err := state.ProcessPayment(context.Background(), 7, decimal.NewFromInt(150000))
	require.NoError(t, err)

	assert.Nil(t, state.Snapshot().Billing)
	assert.Equal(t, 1, backend.fetchCount(), "no member means no refresh")
}

func TestProcessPayment_Failure(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	backend.payErr = &kramaapi.RequestError{Op: kramaapi.OpSubmitPayment, Status: 422, Message: "Tagihan tidak valid"}
	journal := &memoryJournal{}
	state := New(backend, WithJournal(journal), WithIdentity(Identity{StaffID: "staff-1", RecordedBy: 4}))
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	_, err := state.ProcessPayment(context.Background(), 7, decimal.NewFromInt(150000))
	require.Error(t, err)
	assert.Equal(t, "Tagihan tidak valid", kramaapi.Message(err))

	snap := state.Snapshot()
	assert.Equal(t, "Tagihan tidak valid", snap.Error)
	assert.False(t, snap.Busy)
	assert.NotNil(t, snap.Billing, "a failed payment keeps the tagihan on screen")
	assert.Equal(t, 1, backend.fetchCount())

	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, models.JournalFailed, entry.Outcome)
	assert.Equal(t, "Tagihan tidak valid", entry.Message)
	assert.Equal(t, "3201xxxx", entry.MemberID)
	assert.Equal(t, "staff-1", entry.StaffID)
	assert.Equal(t, int64(4), entry.RecordedBy)
}

func TestProcessPayment_JournalsSuccess(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	journal := &memoryJournal{err: errors.New("disk full")}
	state := New(backend, WithJournal(journal), WithIdentity(Identity{StaffID: "staff-1", RecordedBy: 9}))
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	_, err := state.ProcessPayment(context.Background(), 7, decimal.NewFromInt(150000))
	require.NoError(t, err, "journal failures are not surfaced")

	require.Len(t, journal.entries, 1)
	entry := journal.entries[0]
	assert.Equal(t, models.JournalSucceeded, entry.Outcome)
	assert.Equal(t, "key-1", entry.IdempotencyKey)
	assert.Equal(t, "Transfer Bank", entry.Method)
	assert.Equal(t, int64(7), entry.BillingID)
	assert.Equal(t, 1, backend.payments[0].opts, "recorded_by is passed as an option")
}

func TestProposeCheckout_NothingDue(t *testing.T) {
	backend := newFakeBackend()
	zero := wayanDetail()
	zero.Billing.Dues = models.DueCategories{}
	backend.details["zero"] = zero
	state := New(backend)

	_, err := state.ProposeCheckout()
	assert.ErrorIs(t, err, ErrNothingDue)

	require.NoError(t, state.FetchDetail(context.Background(), "zero"))
	_, err = state.ProposeCheckout()
	assert.ErrorIs(t, err, ErrNothingDue)
	assert.Equal(t, "Tidak ada tagihan aktif yang harus dibayar.", Message(err))

	assert.Empty(t, backend.payments)
}

func TestConfirmCheckout(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	backend.onPay = settle
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	proposal, err := state.ProposeCheckout()
	require.NoError(t, err)
	assert.Equal(t, int64(7), proposal.BillingID)
	assert.Equal(t, "3201xxxx", proposal.MemberID)
	assert.True(t, proposal.Amount.Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, "Konfirmasi pembayaran Rp 150.000 untuk tagihan ID 7?", proposal.Prompt(money.Rupiah()))
	assert.Empty(t, backend.payments, "proposing must not touch the network")
	require.NotNil(t, state.Snapshot().Proposal)

	_, err = state.ConfirmCheckout(context.Background(), "some-other-id")
	assert.ErrorIs(t, err, ErrProposalNotFound)

	proposal, err = state.ProposeCheckout()
	require.NoError(t, err)
	_, err = state.ConfirmCheckout(context.Background(), proposal.ID)
	require.NoError(t, err)
	require.Len(t, backend.payments, 1)
	assert.True(t, backend.payments[0].amount.Equal(decimal.NewFromInt(150000)))
	assert.True(t, state.Snapshot().FullyPaid())

	_, err = state.ConfirmCheckout(context.Background(), proposal.ID)
	assert.ErrorIs(t, err, ErrProposalNotFound, "a proposal is single use")
	assert.Len(t, backend.payments, 1)
}

func TestConfirmCheckout_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend, WithClock(func() time.Time { return now }), WithProposalTTL(time.Minute))
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	proposal, err := state.ProposeCheckout()
	require.NoError(t, err)

	now = now.Add(time.Minute)
	assert.Nil(t, state.Snapshot().Proposal)
	_, err = state.ConfirmCheckout(context.Background(), proposal.ID)
	assert.ErrorIs(t, err, ErrProposalExpired)
	assert.Empty(t, backend.payments)
}

func TestCancelCheckout(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	proposal, err := state.ProposeCheckout()
	require.NoError(t, err)
	assert.False(t, state.CancelCheckout("nope"))
	assert.True(t, state.CancelCheckout(proposal.ID))

	_, err = state.ConfirmCheckout(context.Background(), proposal.ID)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestNewSearchDropsPendingProposal(t *testing.T) {
	backend := newFakeBackend()
	backend.details["3201xxxx"] = wayanDetail()
	state := New(backend)
	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))

	proposal, err := state.ProposeCheckout()
	require.NoError(t, err)

	require.NoError(t, state.FetchDetail(context.Background(), "3201xxxx"))
	_, err = state.ConfirmCheckout(context.Background(), proposal.ID)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Konfirmasi pembayaran tidak ditemukan.", Message(ErrProposalNotFound))
	assert.Equal(t, "X", Message(&kramaapi.RequestError{Message: "X"}))
}
