package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveAPI("fetch_detail", OutcomeOK, 120*time.Millisecond)
	c.ObserveAPI("fetch_detail", OutcomeOK, 80*time.Millisecond)
	c.ObserveAPI("submit_payment", OutcomeBackendError, time.Second)
	c.ObserveCheckout(OutcomeOK)
	c.SetActiveSessions(3)

	if got := testutil.ToFloat64(c.apiRequests.WithLabelValues("fetch_detail", OutcomeOK)); got != 2 {
		t.Errorf("fetch_detail ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.apiRequests.WithLabelValues("submit_payment", OutcomeBackendError)); got != 1 {
		t.Errorf("submit_payment backend_error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.checkouts.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("checkouts ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.activeSessions); got != 3 {
		t.Errorf("active sessions = %v, want 3", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveAPI("fetch_detail", OutcomeOK, time.Millisecond)
	c.ObserveCheckout(OutcomeInvalid)
	c.SetActiveSessions(1)
}
