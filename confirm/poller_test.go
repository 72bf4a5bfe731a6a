package confirm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lcdServer answers with the body returned by respond for the n-th query (1 based)
func lcdServer(respond func(n int32) (int, string)) (*httptest.Server, *int32) {
	var count int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&count, 1)
		status, body := respond(n)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	return srv, &count
}

func TestNoEndpoint(t *testing.T) {
	res := NewPoller(" ", time.Second, time.Millisecond).Poll(context.Background(), "AA")
	require.Equal(t, NoEndpoint, res.Outcome)
	require.Zero(t, res.Attempts)
}

func TestConfirmedOnThirdTick(t *testing.T) {
	const interval = 40 * time.Millisecond
	srv, count := lcdServer(func(n int32) (int, string) {
		switch {
		case n == 1:
			return http.StatusNotFound, `{"code":5,"message":"tx not found"}`
		case n < 4:
			return http.StatusOK, `{"tx_response":{}}`
		default:
			return http.StatusOK, `{"tx_response":{"txhash":"AA","code":0}}`
		}
	})
	defer srv.Close()

	start := time.Now()
	res := NewPoller(srv.URL+"/", 2*time.Second, interval).Poll(context.Background(), "AA")
	elapsed := time.Since(start)

	require.Equal(t, Confirmed, res.Outcome)
	require.EqualValues(t, 4, atomic.LoadInt32(count))
	require.GreaterOrEqual(t, elapsed, 3*interval-5*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestOnChainFailureOnFirstQuery(t *testing.T) {
	srv, count := lcdServer(func(int32) (int, string) {
		return http.StatusOK, `{"txResponse":{"code":5,"raw_log":"insufficient fee"}}`
	})
	defer srv.Close()

	res := NewPoller(srv.URL, time.Second, 50*time.Millisecond).Poll(context.Background(), "AA")
	require.Equal(t, OnChainFailure, res.Outcome)
	require.Equal(t, "insufficient fee", res.Response.RawLog)
	require.EqualValues(t, 1, atomic.LoadInt32(count))
}

func TestTimeoutNotEarlier(t *testing.T) {
	const timeout = 150 * time.Millisecond
	srv, count := lcdServer(func(n int32) (int, string) {
		if n%2 == 0 {
			return http.StatusInternalServerError, "oops"
		}
		return http.StatusOK, `not json`
	})
	defer srv.Close()

	start := time.Now()
	res := NewPoller(srv.URL, timeout, 20*time.Millisecond).Poll(context.Background(), "AA")
	elapsed := time.Since(start)

	require.Equal(t, Timeout, res.Outcome)
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Greater(t, atomic.LoadInt32(count), int32(3))
}

func TestHungEndpointBoundedByTimeout(t *testing.T) {
	const timeout = 200 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		_, _ = io.WriteString(w, `{"tx_response":{"code":0}}`)
	}))
	defer srv.Close()

	start := time.Now()
	res := NewPoller(srv.URL, timeout, 50*time.Millisecond).Poll(context.Background(), "AA")
	elapsed := time.Since(start)

	require.Equal(t, Timeout, res.Outcome)
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, time.Second)
	require.Equal(t, 1, res.Attempts)
}

func TestCancelledContextEndsAsTimeout(t *testing.T) {
	srv, _ := lcdServer(func(int32) (int, string) { return http.StatusOK, `{}` })
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	res := NewPoller(srv.URL, 5*time.Second, 10*time.Millisecond).Poll(ctx, "AA")
	require.Equal(t, Timeout, res.Outcome)
	require.Less(t, time.Since(start), time.Second)
}

func TestOutcomeString(t *testing.T) {
	for o, s := range map[Outcome]string{Confirmed: "confirmed", OnChainFailure: "onChainFailure", Timeout: "timeout", NoEndpoint: "noEndpoint"} {
		require.Equal(t, s, o.String(), fmt.Sprint(int(o)))
	}
}
