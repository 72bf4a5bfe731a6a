package storeapi

import (
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/txs"
)

// ServerInfo serverinfo
type ServerInfo struct {
	Identifier string
	Version    string
	Network    string
	ChainID    string   `json:",omitempty"`
	LCD        []string `json:",omitempty"`
	APIOrigin  string
}

// BalancesResult balances of the configured display denoms
type BalancesResult struct {
	Address  string         `json:"address"`
	Balances []*lcd.Balance `json:"balances"`
}

// DecodeResult decoded unsigned tx
type DecodeResult struct {
	Strategy string                   `json:"strategy"`
	Tx       *txs.SignableTransaction `json:"tx"`
}

// tx status values
const (
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
	TxStatusPending   = "pending"
)

// TxStatus tx status
type TxStatus struct {
	TxHash      string `json:"txhash"`
	Status      string `json:"status"`
	Code        *int64 `json:"code,omitempty"`
	Height      string `json:"height,omitempty"`
	RawLog      string `json:"rawlog,omitempty"`
	ExplorerURL string `json:"explorer"`
}

// RedirectResult parsed login redirect
type RedirectResult struct {
	GameID  string     `json:"gameId"`
	Success bool       `json:"success"`
	PID     string     `json:"pid,omitempty"`
	Code    string     `json:"code,omitempty"`
	User    *hive.User `json:"user,omitempty"`
}
