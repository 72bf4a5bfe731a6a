package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2xstation/storefront/metrics"
	"github.com/c2xstation/storefront/params"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server url
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRestRoutes(t *testing.T) {
	srv := httptest.NewServer(NewRouter(nil))
	defer srv.Close()

	status, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `"ok"`, body)

	_, body = get(t, srv.URL+"/versioninfo")
	assert.Equal(t, `"`+params.VersionWithMeta+`"`, body)

	status, _ = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)

	payload := base64.StdEncoding.EncodeToString([]byte(`{"msgs":[{"@type":"/x.y.MsgZ"}]}`))
	resp, err := http.Post(srv.URL+"/decode", "text/plain", strings.NewReader(payload)) //nolint:gosec,noctx // test server url
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded struct {
		Strategy string
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "plain-json", decoded.Strategy)

	_, body = get(t, srv.URL+"/decode?payload=")
	assert.Contains(t, body, "empty payload")
}

func TestRPCService(t *testing.T) {
	srv := httptest.NewServer(NewRouter(nil))
	defer srv.Close()

	req := `{"jsonrpc":"2.0","method":"store.GetVersionInfo","params":[{}],"id":1}`
	resp, err := http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(req)) //nolint:gosec,noctx // test server url
	require.NoError(t, err)
	defer resp.Body.Close()

	var result struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, params.VersionWithMeta, result.Result)
}

func TestMetricsRoute(t *testing.T) {
	recorder := metrics.NewPrometheusRecorder()
	recorder.IncCounter(metrics.CheckoutTotal, map[string]string{"outcome": "completed"})

	srv := httptest.NewServer(NewRouter(recorder))
	defer srv.Close()

	status, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "storefront_events_total")
}
