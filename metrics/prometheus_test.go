package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	p := NewPrometheusRecorder()
	p.IncCounter(CheckoutTotal, map[string]string{"outcome": "failed", "reason": "validation"})
	p.IncCounter(CheckoutTotal, map[string]string{"outcome": "failed", "reason": "validation"})
	p.IncCounter(CheckoutTotal, map[string]string{"outcome": "confirmed"})
	p.ObserveLatency(ConfirmLatency, 1500*time.Millisecond, map[string]string{"outcome": "confirmed"})

	require.Equal(t, float64(2), testutil.ToFloat64(p.counters.WithLabelValues(CheckoutTotal, "failed", "validation")))
	require.Equal(t, float64(1), testutil.ToFloat64(p.counters.WithLabelValues(CheckoutTotal, "confirmed", "")))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "storefront_events_total"))
	require.True(t, strings.Contains(string(body), "storefront_latency_seconds_count"))
}

func TestRecordersAreIndependent(t *testing.T) {
	// each recorder owns its registry, so a second one must not panic
	_ = NewPrometheusRecorder()
	_ = NewPrometheusRecorder()
	var r Recorder = NoopRecorder{}
	r.IncCounter(CheckoutTotal, nil)
	r.ObserveLatency(CheckoutLatency, time.Second, nil)
}

func TestPrometheusRecorderPush(t *testing.T) {
	var (
		method, path string
		body         []byte
		down         atomic.Bool
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	p := NewPrometheusRecorder()
	p.IncCounter(CheckoutTotal, map[string]string{"outcome": "confirmed"})
	require.NoError(t, p.Push(gateway.URL, "storefront_checkout"))
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/metrics/job/storefront_checkout", path)
	require.True(t, strings.Contains(string(body), "storefront_events_total"))

	down.Store(true)
	require.Error(t, p.Push(gateway.URL, "storefront_checkout"))
}
