// Package kramaapi is the HTTP client for the village backend that owns
// members, billing records and payments.
package kramaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/metrics"
	"github.com/krama-desa/iuran/internal/models"
)

// Operation names used in errors, logs and metrics.
const (
	OpFetchDetail   = "fetch_detail"
	OpSubmitPayment = "submit_payment"
)

const (
	DefaultMembersPath  = "/members"
	DefaultPaymentsPath = "/payments"
	DefaultMethod       = "Transfer Bank"
	DefaultNote         = "pending"

	maxBodyBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend API root, e.g. "http://localhost:8000/api".
	BaseURL string

	// MembersPath and PaymentsPath are appended to BaseURL.
	// Defaults: "/members" and "/payments".
	MembersPath  string
	PaymentsPath string

	// HTTPClient is used for every request. Nil means a client with no
	// timeout beyond the transport's own.
	HTTPClient *http.Client

	// Defaults applied to each payment unless overridden by an option.
	DefaultMethod     string
	DefaultNote       string
	DefaultRecordedBy int64

	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Client calls the village backend. It never retries or caches: every call
// hits the network.
type Client struct {
	httpClient  *http.Client
	membersURL  string
	paymentsURL string
	method      string
	note        string
	recordedBy  int64
	metrics     *metrics.Collector
	logger      *slog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	c := &Client{
		httpClient:  cfg.HTTPClient,
		membersURL:  base.String() + withDefault(cfg.MembersPath, DefaultMembersPath),
		paymentsURL: base.String() + withDefault(cfg.PaymentsPath, DefaultPaymentsPath),
		method:      withDefault(cfg.DefaultMethod, DefaultMethod),
		note:        withDefault(cfg.DefaultNote, DefaultNote),
		recordedBy:  cfg.DefaultRecordedBy,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// FetchDetail looks up a member by member ID or NIK and returns it together
// with its first unsettled billing record, if any.
func (c *Client) FetchDetail(ctx context.Context, identifier string) (*models.Detail, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &RequestError{Op: OpFetchDetail, Message: MsgEmptyIdentifier, Err: ErrEmptyIdentifier}
	}

	start := time.Now()
	var resp detailResponse
	status, err := c.do(ctx, OpFetchDetail, http.MethodGet, c.membersURL+"/"+url.PathEscape(identifier), nil, nil, &resp, MsgFetchUnreachable)
	if err != nil {
		c.observe(OpFetchDetail, start, err)
		c.logger.Warn("Member lookup failed", "identifier", identifier, "error", err, "cause", errors.Unwrap(err))
		return nil, err
	}

	detail, err := resp.detail()
	if err != nil {
		msg := MsgInvalidResponse
		if errors.Is(err, ErrMemberMissing) {
			msg = MsgMemberNotFound
		}
		err = &RequestError{Op: OpFetchDetail, Status: status, Message: msg, Err: err}
		c.observe(OpFetchDetail, start, err)
		c.logger.Warn("Member lookup returned unusable data", "identifier", identifier, "error", errors.Unwrap(err))
		return nil, err
	}

	c.observe(OpFetchDetail, start, nil)
	c.logger.Debug("Member lookup ok",
		"identifier", identifier,
		"member_id", detail.Member.ID,
		"outstanding", detail.Billing != nil,
	)
	return detail, nil
}

// PaymentOption overrides a default of SubmitPayment.
type PaymentOption func(*paymentOptions)

type paymentOptions struct {
	record models.PaymentRecord
	key    string
}

// WithMethod sets the payment method.
func WithMethod(method string) PaymentOption {
	return func(o *paymentOptions) { o.record.Method = method }
}

// WithNote sets the payment note.
func WithNote(note string) PaymentOption {
	return func(o *paymentOptions) { o.record.Note = note }
}

// WithRecordedBy sets the backend staff identifier recording the payment.
func WithRecordedBy(staffID int64) PaymentOption {
	return func(o *paymentOptions) { o.record.RecordedBy = staffID }
}

// WithIdempotencyKey sets the Idempotency-Key header. A fresh xid is used
// when unset.
func WithIdempotencyKey(key string) PaymentOption {
	return func(o *paymentOptions) { o.key = key }
}

// SubmitPayment records a payment of amount against a billing record.
func (c *Client) SubmitPayment(ctx context.Context, billingID int64, amount decimal.Decimal, opts ...PaymentOption) (*models.PaymentReceipt, error) {
	if billingID <= 0 {
		c.metrics.ObserveAPI(OpSubmitPayment, metrics.OutcomeInvalid, 0)
		return nil, &ValidationError{Field: "billing_id", Message: MsgPaymentIncomplete}
	}
	if !amount.IsPositive() {
		c.metrics.ObserveAPI(OpSubmitPayment, metrics.OutcomeInvalid, 0)
		return nil, &ValidationError{Field: "amount", Message: MsgPaymentIncomplete}
	}

	o := paymentOptions{
		record: models.PaymentRecord{
			BillingID:  billingID,
			Amount:     amount,
			Method:     c.method,
			Note:       c.note,
			RecordedBy: c.recordedBy,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.key == "" {
		o.key = xid.New().String()
	}

	body := paymentRequestJSON{
		BillingID:  o.record.BillingID,
		Amount:     json.Number(o.record.Amount.String()),
		Method:     o.record.Method,
		Note:       o.record.Note,
		RecordedBy: o.record.RecordedBy,
	}
	header := http.Header{}
	header.Set("Idempotency-Key", o.key)

	start := time.Now()
	var raw json.RawMessage
	if _, err := c.do(ctx, OpSubmitPayment, http.MethodPost, c.paymentsURL, body, header, &raw, MsgPaymentFailed); err != nil {
		c.observe(OpSubmitPayment, start, err)
		c.logger.Warn("Payment submission failed",
			"billing_id", billingID,
			"amount", amount.String(),
			"idempotency_key", o.key,
			"error", err,
			"cause", errors.Unwrap(err),
		)
		return nil, err
	}
	c.observe(OpSubmitPayment, start, nil)

	receipt := &models.PaymentReceipt{
		IdempotencyKey: o.key,
		Record:         o.record,
		Data:           raw,
	}
	var m messageJSON
	if len(raw) > 0 && json.Unmarshal(raw, &m) == nil {
		receipt.Message = m.Message
	}

	c.logger.Info("Payment submitted",
		"billing_id", billingID,
		"amount", amount.String(),
		"recorded_by", o.record.RecordedBy,
		"idempotency_key", o.key,
	)
	return receipt, nil
}

// do performs one JSON request. Every failure comes back as a *RequestError
// whose message is the backend's own, or fallback.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body any, header http.Header, out any, fallback string) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, &RequestError{Op: op, Message: fallback, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, &RequestError{Op: op, Message: fallback, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &RequestError{Op: op, Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, &RequestError{Op: op, Status: resp.StatusCode, Message: fallback, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &RequestError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: backendMessage(data, fallback),
			Err:     statusError(resp.Status),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, &RequestError{Op: op, Status: resp.StatusCode, Message: MsgInvalidResponse, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		outcome = metrics.OutcomeBackendError
		if reqErr.Transport() {
			outcome = metrics.OutcomeTransportError
		}
	}
	c.metrics.ObserveAPI(op, outcome, time.Since(start))
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
