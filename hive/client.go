// Package hive is the client of the storefront backend and the HIVE login flow.
package hive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/rpc/client"
)

// backend paths
const (
	PaymentPath  = "/hive/payment"
	ProductsPath = "/hive/products/"
	LoginPath    = "/hive/login"
	LogoutPath   = "/hive/logout"
)

var (
	unsignedTxKeys = []string{"unsignedTx", "unsignTx", "unsignedTX", "unsigntx"}
)

// Client talks to the storefront backend. Cookies are kept between calls.
type Client struct {
	Origin  string
	Timeout int // seconds

	http *http.Client
}

// NewClient new backend client
func NewClient(origin string, timeout int) *Client {
	return &Client{
		Origin:  strings.TrimRight(origin, "/"),
		Timeout: timeout,
		http:    client.NewSessionClient(),
	}
}

// PaymentRequest is the purchase intent sent to the backend.
type PaymentRequest struct {
	Address     string `json:"address"`
	GameID      int    `json:"gameId"`
	PlayerID    string `json:"playerId"`
	UserID      string `json:"userId"`
	ProductCode string `json:"productCode"`
}

// PaymentIntent is the accepted payment.
type PaymentIntent struct {
	UnsignedTx    string
	TransactionID string
}

// Product is a catalog item.
type Product struct {
	ProductID string      `json:"productId"`
	Code      string      `json:"productCode"`
	Name      string      `json:"productName"`
	Price     json.Number `json:"price"`
}

// GameMeta describes a game and its login settings.
type GameMeta struct {
	GameID      json.Number     `json:"gameId"`
	Title       string          `json:"title"`
	AppID       string          `json:"appId"`
	HiveURL     string          `json:"hiveUrl"`
	RedirectURL string          `json:"redirectUrl"`
	GIndex      json.RawMessage `json:"gindex,omitempty"`
}

// Catalog is the product list of a game.
type Catalog struct {
	Game     *GameMeta  `json:"game"`
	Products []*Product `json:"products"`
}

// Group is a game character.
type Group struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
}

// User is a logged in player with its characters.
type User struct {
	PID    string   `json:"pid"`
	Groups []*Group `json:"groups"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*client.Response, error) {
	resp, err := client.Do(ctx, &client.Request{
		Method:  method,
		URL:     c.Origin + path,
		Body:    body,
		Timeout: c.Timeout,
		Client:  c.http,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

// RequestPayment asks the backend for the unsigned transaction of req.
func (c *Client) RequestPayment(ctx context.Context, req *PaymentRequest) (*PaymentIntent, error) {
	log.Info("request payment", "url", c.Origin+PaymentPath, "gameId", req.GameID, "productCode", req.ProductCode)
	resp, err := c.do(ctx, http.MethodPost, PaymentPath, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &ServerError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	var root map[string]interface{}
	if err = json.Unmarshal(resp.Body, &root); err != nil {
		return nil, &ServerError{Status: resp.StatusCode, Message: "unreadable payment response"}
	}
	if success, _ := root["success"].(bool); !success {
		message, _ := root["message"].(string)
		return nil, &ServerError{Status: resp.StatusCode, Message: message}
	}
	intent := parsePaymentIntent(root)
	log.Info("payment response", "hasUnsignedTx", intent.UnsignedTx != "", "transactionId", intent.TransactionID)
	if intent.UnsignedTx == "" {
		return intent, ErrMissingUnsignedTx
	}
	return intent, nil
}

// parsePaymentIntent reads unsignedTx and transactionId from the payload
// (data.data, else data, else root), then data, then root.
func parsePaymentIntent(root map[string]interface{}) *PaymentIntent {
	data, _ := root["data"].(map[string]interface{})
	payload := root
	if data != nil {
		payload = data
		if inner, ok := data["data"].(map[string]interface{}); ok {
			payload = inner
		}
	}
	scopes := []map[string]interface{}{payload, data, root}

	intent := &PaymentIntent{}
	for _, key := range unsignedTxKeys {
		if intent.UnsignedTx = lookupString(scopes, key); intent.UnsignedTx != "" {
			break
		}
	}
	intent.TransactionID = lookupString(scopes, "transactionId")
	return intent
}

func lookupString(scopes []map[string]interface{}, key string) string {
	for _, scope := range scopes {
		if scope == nil {
			continue
		}
		switch v := scope[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func errorMessage(resp *client.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(resp.Body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %v", resp.StatusCode)
}

// Products gets the catalog of gameID.
func (c *Client) Products(ctx context.Context, gameID int) (*Catalog, error) {
	resp, err := c.do(ctx, http.MethodGet, ProductsPath+strconv.Itoa(gameID), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &ServerError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	var result struct {
		Data *Catalog `json:"data"`
	}
	if err = json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal products error: %w", err)
	}
	if result.Data == nil {
		return &Catalog{Products: []*Product{}}, nil
	}
	if result.Data.Products == nil {
		result.Data.Products = []*Product{}
	}
	return result.Data, nil
}

// Login checks the cookie session of gameID, or confirms a HIVE pid and
// token when both are given.
func (c *Client) Login(ctx context.Context, gameID int, pid, token string) (*User, error) {
	qs := url.Values{}
	qs.Set("gameId", strconv.Itoa(gameID))
	if pid != "" && token != "" {
		qs.Set("pid", pid)
		qs.Set("token", token)
	}
	resp, err := c.do(ctx, http.MethodGet, LoginPath+"?"+qs.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &ServerError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %v", resp.StatusCode)}
	}
	return parseUser(resp.Body)
}

type userResponse struct {
	PID          string `json:"pid"`
	GameUserInfo *struct {
		Groups []struct {
			GroupID   json.Number `json:"groupId"`
			GroupName string      `json:"groupName"`
		} `json:"groups"`
	} `json:"gameUserInfo"`
}

func parseUser(body []byte) (*User, error) {
	var result struct {
		User *userResponse `json:"user"`
		Data *struct {
			User *userResponse `json:"user"`
		} `json:"data"`
	}
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("unmarshal login error: %w", err)
	}
	u := result.User
	if u == nil && result.Data != nil {
		u = result.Data.User
	}
	if u == nil || u.PID == "" || u.GameUserInfo == nil || len(u.GameUserInfo.Groups) == 0 {
		return nil, ErrNoUser
	}
	user := &User{PID: u.PID}
	for _, g := range u.GameUserInfo.Groups {
		user.Groups = append(user.Groups, &Group{GroupID: g.GroupID.String(), GroupName: g.GroupName})
	}
	return user, nil
}

// Logout ends the backend session. Failures are logged only.
func (c *Client) Logout(ctx context.Context) {
	resp, err := c.do(ctx, http.MethodGet, LogoutPath, nil)
	if err != nil {
		log.Warn("logout failed", "err", err)
		return
	}
	if !resp.OK() {
		log.Warn("logout failed", "status", resp.StatusCode)
	}
}
