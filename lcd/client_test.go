package lcd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLCD(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(TxByHash+"AA", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"tx_response":{"txhash":"AA","code":0,"height":"10"}}`)
	})
	mux.HandleFunc(TxByHash+"BB", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"txResponse":{"txhash":"BB","code":5,"raw_log":"out of gas"}}`)
	})
	mux.HandleFunc(Balances+"xpla1abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"balances":[{"denom":"axpla","amount":"1500000000000000000"}]}`)
	})
	mux.HandleFunc(AccountInfo+"xpla1abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"account":{"@type":"/ethermint.types.v1.EthAccount","base_account":{"address":"xpla1abc","account_number":"12","sequence":"3"}}}`)
	})
	mux.HandleFunc(AccountInfo+"xpla1plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","address":"xpla1plain","account_number":"1"}}`)
	})
	mux.HandleFunc(LatestBlock, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"block":{"header":{"chain_id":"cube_47-5","height":"100"}}}`)
	})
	mux.HandleFunc(BroadTx, func(w http.ResponseWriter, r *http.Request) {
		var req BroadcastTxRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, BroadcastModeSync, req.Mode)
		require.Equal(t, "AQID", req.TxBytes)
		_, _ = io.WriteString(w, `{"tx_response":{"code":0}}`)
	})
	return httptest.NewServer(mux)
}

func TestQueries(t *testing.T) {
	srv := newLCD(t)
	defer srv.Close()
	ctx := context.Background()
	// first endpoint is dead, the client moves on
	c := NewClient("http://127.0.0.1:1", srv.URL+"/", " ")
	require.Len(t, c.BaseUrls, 2)

	res, err := c.GetTransactionByHash(ctx, "AA")
	require.NoError(t, err)
	require.EqualValues(t, 0, *res.Response().Code)

	res, err = c.GetTransactionByHash(ctx, "BB")
	require.NoError(t, err)
	require.EqualValues(t, 5, *res.Response().Code)

	_, err = c.GetTransactionByHash(ctx, "CC")
	require.ErrorIs(t, err, ErrTxNotFound)

	amount, err := c.GetDenomBalance(ctx, "xpla1abc", "axpla")
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000", amount)
	amount, err = c.GetDenomBalance(ctx, "xpla1abc", "uusd")
	require.NoError(t, err)
	require.Equal(t, "0", amount)

	acc, err := c.GetBaseAccount(ctx, "xpla1abc")
	require.NoError(t, err)
	num, seq, err := acc.Numbers()
	require.NoError(t, err)
	require.Equal(t, uint64(12), num)
	require.Equal(t, uint64(3), seq)

	acc, err = c.GetBaseAccount(ctx, "xpla1plain")
	require.NoError(t, err)
	num, seq, err = acc.Numbers()
	require.NoError(t, err)
	require.Equal(t, uint64(1), num)
	require.Equal(t, uint64(0), seq)

	chainID, err := c.GetChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, "cube_47-5", chainID)
}

func TestBroadcastFillsHash(t *testing.T) {
	srv := newLCD(t)
	defer srv.Close()

	txBytes := []byte{1, 2, 3}
	res, err := NewClient(srv.URL).BroadcastTx(context.Background(), txBytes)
	require.NoError(t, err)
	require.Equal(t, TxHash(txBytes), res.TxHash)
	require.Len(t, res.TxHash, 64)
}

func TestNoEndpoint(t *testing.T) {
	_, err := NewClient().BroadcastTx(context.Background(), []byte{1})
	require.ErrorIs(t, err, ErrNoEndpoint)
}

func TestDisplayAmounts(t *testing.T) {
	cases := []struct {
		Amount   string
		Decimals int32
		Expected string
	}{
		{"1500000000000000000", 18, "1.5"},
		{"2500000", 6, "2.5"},
		{"0", 6, "0"},
		{"bad", 6, "0"},
	}
	for _, c := range cases {
		if got := NewBalance("", "d", c.Amount, c.Decimals).Display; got != c.Expected {
			t.Fatalf("%v/%v expected %v, but %v got", c.Amount, c.Decimals, c.Expected, got)
		}
	}
}
