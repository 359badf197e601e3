package kramaapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krama-desa/iuran/internal/models"
)

// The backend has shipped two response shapes for member lookups: the
// documented {member, billing_summary} one and the older Laravel
// {krama, tagihan_aktif} one. Both decode into the same wire types.

type detailResponse struct {
	Member         *memberJSON   `json:"member"`
	Krama          *memberJSON   `json:"krama"`
	BillingSummary []billingJSON `json:"billing_summary"`
	ActiveBilling  *billingJSON  `json:"tagihan_aktif"`
}

type memberJSON struct {
	ID          flexString `json:"id"`
	KramaID     flexString `json:"krama_id"`
	Name        string     `json:"name"`
	Nama        string     `json:"nama"`
	Status      string     `json:"status"`
	StatusKrama string     `json:"status_krama"`
}

type billingJSON struct {
	ID            flexString `json:"id"`
	TagihanID     flexString `json:"tagihan_id"`
	IssueDate     string     `json:"issue_date"`
	TglTerbit     string     `json:"tgl_terbit"`
	DueCategories *duesJSON  `json:"due_categories"`
	JenisIuran    *duesJSON  `json:"jenis_iuran"`
	Status        string     `json:"status"`
}

type duesJSON struct {
	Base        decimal.Decimal `json:"base"`
	Development decimal.Decimal `json:"development"`
	Social      decimal.Decimal `json:"social"`
	Iuran       decimal.Decimal `json:"iuran"`
	Dedosar     decimal.Decimal `json:"dedosar"`
	Peturunan   decimal.Decimal `json:"peturunan"`
}

type paymentRequestJSON struct {
	BillingID  int64       `json:"billing_id"`
	Amount     json.Number `json:"amount"`
	Method     string      `json:"method"`
	Note       string      `json:"note"`
	RecordedBy int64       `json:"recorded_by"`
}

type messageJSON struct {
	Message string `json:"message"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (r *detailResponse) detail() (*models.Detail, error) {
	m := r.Member
	if m == nil {
		m = r.Krama
	}
	if m == nil {
		return nil, ErrMemberMissing
	}

	out := &models.Detail{
		Member: &models.Member{
			ID:     string(firstNonEmpty(m.ID, m.KramaID)),
			Name:   firstNonEmpty(m.Name, m.Nama),
			Status: firstNonEmpty(m.Status, m.StatusKrama),
		},
	}

	records := r.BillingSummary
	if r.ActiveBilling != nil {
		records = append(records, *r.ActiveBilling)
	}
	for i := range records {
		// Settled records are never shown, so their ids need not parse.
		if models.ParseBillingStatus(records[i].Status) == models.BillingCompleted {
			continue
		}
		record, err := records[i].record()
		if err != nil {
			return nil, err
		}
		if record.Outstanding() {
			out.Billing = record
			break
		}
	}

	return out, nil
}

func (b *billingJSON) record() (*models.BillingRecord, error) {
	raw := string(firstNonEmpty(b.ID, b.TagihanID))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: billing id %q: %v", ErrInvalidResponse, raw, err)
	}

	record := &models.BillingRecord{
		ID:        id,
		IssueDate: parseDate(firstNonEmpty(b.IssueDate, b.TglTerbit)),
		Status:    models.ParseBillingStatus(b.Status),
	}

	dues := b.DueCategories
	if dues == nil {
		dues = b.JenisIuran
	}
	if dues != nil {
		record.Dues = models.DueCategories{
			Base:        firstNonZero(dues.Base, dues.Iuran),
			Development: firstNonZero(dues.Development, dues.Dedosar),
			Social:      firstNonZero(dues.Social, dues.Peturunan),
		}
	}

	return record, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty[T ~string](values ...T) T {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return decimal.Zero
}

// backendMessage extracts {"message": "..."} from an error body.
func backendMessage(body []byte, fallback string) string {
	var m messageJSON
	if err := json.Unmarshal(body, &m); err != nil {
		return fallback
	}
	if strings.TrimSpace(m.Message) != "" {
		return m.Message
	}
	return fallback
}
