package hive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5)
}

func replyPayment(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestRequestPaymentSendsIntent(t *testing.T) {
	var got map[string]interface{}
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PaymentPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"data":{"unsignedTx":"AAA","transactionId":"T-1"}}`)
	})

	intent, err := c.RequestPayment(context.Background(), &PaymentRequest{
		Address: "xpla1buyer", GameID: 3, PlayerID: "555", UserID: "777", ProductCode: "RUBY10",
	})
	require.NoError(t, err)
	assert.Equal(t, "AAA", intent.UnsignedTx)
	assert.Equal(t, "T-1", intent.TransactionID)

	assert.Equal(t, map[string]interface{}{
		"address": "xpla1buyer", "gameId": float64(3), "playerId": "555", "userId": "777", "productCode": "RUBY10",
	}, got)
}

func TestParsePaymentIntentAliases(t *testing.T) {
	cases := []struct {
		Name string
		Body string
		Tx   string
		ID   string
	}{
		{"nested data", `{"data":{"data":{"unsignedTx":"P"},"unsignedTx":"D","transactionId":9}}`, "P", "9"},
		{"data", `{"data":{"unsignedTx":"D"},"unsignedTx":"R"}`, "D", ""},
		{"root", `{"unsignedTx":"R","transactionId":"X"}`, "R", "X"},
		{"unsignTx alias", `{"data":{"unsignTx":"U"}}`, "U", ""},
		{"unsignedTX alias", `{"unsignedTX":"V"}`, "V", ""},
		{"unsigntx alias", `{"data":{"unsigntx":"W"}}`, "W", ""},
		{"primary wins over alias", `{"unsignTx":"A","data":{"unsignedTx":"B"}}`, "B", ""},
		{"missing", `{"data":{}}`, "", ""},
	}
	for _, tc := range cases {
		var root map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(tc.Body), &root), tc.Name)
		intent := parsePaymentIntent(root)
		assert.Equal(t, tc.Tx, intent.UnsignedTx, tc.Name)
		assert.Equal(t, tc.ID, intent.TransactionID, tc.Name)
	}
}

func TestRequestPaymentErrors(t *testing.T) {
	cases := []struct {
		Name          string
		Status        int
		Body          string
		Message       string
		LoginRequired bool
	}{
		{"json message", 401, `{"message":"Session expired"}`, "Session expired", true},
		{"text body", 500, "internal failure", "internal failure", false},
		{"empty body", 502, "", "HTTP 502", false},
		{"success false", 200, `{"success":false,"message":"Please login first"}`, "Please login first", true},
		{"korean login", 200, `{"success":false,"message":"하이브 로그인이 필요합니다"}`, "하이브 로그인이 필요합니다", true},
		{"rejected", 200, `{"success":false,"message":"product sold out"}`, "product sold out", false},
	}
	for _, tc := range cases {
		c := newTestServer(t, replyPayment(tc.Status, tc.Body))
		_, err := c.RequestPayment(context.Background(), &PaymentRequest{GameID: 3})
		var serverErr *ServerError
		require.True(t, errors.As(err, &serverErr), tc.Name)
		assert.Equal(t, tc.Message, serverErr.Message, tc.Name)
		assert.Equal(t, tc.LoginRequired, serverErr.LoginRequired(), tc.Name)
	}
}

func TestRequestPaymentMissingUnsignedTx(t *testing.T) {
	c := newTestServer(t, replyPayment(200, `{"success":true,"data":{"transactionId":"T-2"}}`))
	intent, err := c.RequestPayment(context.Background(), &PaymentRequest{GameID: 3})
	require.ErrorIs(t, err, ErrMissingUnsignedTx)
	assert.Equal(t, "T-2", intent.TransactionID)
}

func TestRequestPaymentTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 1)
	_, err := c.RequestPayment(context.Background(), &PaymentRequest{GameID: 3})
	require.ErrorIs(t, err, ErrTransport)
}

func TestIsLoginRequired(t *testing.T) {
	for _, msg := range []string{"LOGIN required", "please sign in", "Signin", "unauthorized", "Unauthorised", "HIVE 로그인", "session gone"} {
		assert.True(t, IsLoginRequired(msg), msg)
	}
	for _, msg := range []string{"", "insufficient stock", "bad product code"} {
		assert.False(t, IsLoginRequired(msg), msg)
	}
}

func TestProducts(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hive/products/3", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"game":{"gameId":3,"title":"Cube","appId":"app.x","gindex":12,"hiveUrl":""},
			"products":[{"productId":"1","productCode":"RUBY10","productName":"10 Ruby","price":"1.5"}]}}`)
	})
	catalog, err := c.Products(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, catalog.Game)
	assert.Equal(t, "Cube", catalog.Game.Title)
	assert.Equal(t, "12", string(catalog.Game.GIndex))
	require.Len(t, catalog.Products, 1)
	assert.Equal(t, "RUBY10", catalog.Products[0].Code)
	assert.Equal(t, "1.5", catalog.Products[0].Price.String())
}

func TestLoginKeepsCookieSession(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pid") != "" {
			assert.Equal(t, "3", q.Get("gameId"))
			assert.Equal(t, "tok", q.Get("token"))
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			_, _ = io.WriteString(w, `{"data":{"user":{"pid":"555","gameUserInfo":{"groups":[{"groupId":1,"groupName":"Hero"}]}}}}`)
			return
		}
		if cookie, err := r.Cookie("sid"); err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"user":{"pid":"555","gameUserInfo":{"groups":[{"groupId":"1","groupName":"Hero"}]}}}`)
	})

	_, err := c.Login(context.Background(), 3, "", "")
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, http.StatusUnauthorized, serverErr.Status)

	user, err := c.Login(context.Background(), 3, "555", "tok")
	require.NoError(t, err)
	want := &User{PID: "555", Groups: []*Group{{GroupID: "1", GroupName: "Hero"}}}
	assert.Equal(t, want, user)

	user, err = c.Login(context.Background(), 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, want, user)
}

func TestLoginWithoutGroups(t *testing.T) {
	c := newTestServer(t, replyPayment(200, `{"user":{"pid":"555","gameUserInfo":{"groups":[]}}}`))
	_, err := c.Login(context.Background(), 3, "", "")
	require.ErrorIs(t, err, ErrNoUser)
}
