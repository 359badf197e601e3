package kramaapi

import (
	"errors"
	"fmt"
)

// Messages shown to staff. Backend-provided messages take precedence where
// one is available.
const (
	MsgEmptyIdentifier   = "NIK atau ID Tagihan tidak boleh kosong."
	MsgFetchUnreachable  = "Gagal menghubungi server API."
	MsgMemberNotFound    = "Data Krama tidak ditemukan."
	MsgPaymentFailed     = "Gagal memproses pembayaran. Periksa Tagihan ID."
	MsgPaymentIncomplete = "Data pembayaran tidak lengkap."
	MsgInvalidResponse   = "Data dari server API tidak valid."
)

var (
	ErrEmptyIdentifier = errors.New("identifier is empty")
	ErrBackendStatus   = errors.New("backend returned an error status")
	ErrMemberMissing   = errors.New("response has no member")
	ErrInvalidResponse = errors.New("response could not be decoded")
)

// RequestError is returned when a backend call cannot produce a result.
// Message is always safe to show to staff.
type RequestError struct {
	// Op is the client operation, OpFetchDetail or OpSubmitPayment.
	Op string

	// Status is the HTTP status, or 0 when no response was received.
	Status int

	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request failed before any response arrived.
func (e *RequestError) Transport() bool {
	return e.Status == 0 && !errors.Is(e.Err, ErrEmptyIdentifier)
}

// ValidationError is returned when arguments are rejected before any
// network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Message returns the text to show for err. Errors from this package carry
// their own message; anything else falls back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return err.Error()
}

func statusError(status string) error {
	return fmt.Errorf("%w: %s", ErrBackendStatus, status)
}
