package lcd

import (
	"strconv"
)

// TxResponse is the part of a tx response the storefront reads.
type TxResponse struct {
	Height    string `json:"height"`
	TxHash    string `json:"txhash"`
	Codespace string `json:"codespace"`
	Code      *int64 `json:"code"`
	RawLog    string `json:"raw_log"`
	GasWanted string `json:"gas_wanted"`
	GasUsed   string `json:"gas_used"`
	Timestamp string `json:"timestamp"`
}

// GetTxResponse /cosmos/tx/v1beta1/txs/{hash}
type GetTxResponse struct {
	TxResponse      *TxResponse `json:"tx_response"`
	TxResponseCamel *TxResponse `json:"txResponse"`
}

// Response returns tx_response, falling back to txResponse
func (r *GetTxResponse) Response() *TxResponse {
	if r == nil {
		return nil
	}
	if r.TxResponse != nil {
		return r.TxResponse
	}
	return r.TxResponseCamel
}

// BroadcastTxRequest broadcast request
type BroadcastTxRequest struct {
	TxBytes string `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

// BroadcastTxResponse broadcast response
type BroadcastTxResponse struct {
	TxResponse *TxResponse `json:"tx_response"`
}

// CoinResponse coin in rest form
type CoinResponse struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// QueryAllBalancesResponse /cosmos/bank/v1beta1/balances/{address}
type QueryAllBalancesResponse struct {
	Balances []CoinResponse `json:"balances"`
}

// BaseAccount account number and sequence
type BaseAccount struct {
	Address       string `json:"address"`
	AccountNumber string `json:"account_number"`
	Sequence      string `json:"sequence"`
}

// AccountResponse covers plain and wrapped (eth style) accounts
type AccountResponse struct {
	Type string `json:"@type"`
	BaseAccount
	Wrapped *BaseAccount `json:"base_account,omitempty"`
}

// QueryAccountResponse /cosmos/auth/v1beta1/accounts/{address}
type QueryAccountResponse struct {
	Account *AccountResponse `json:"account"`
}

// Base returns the base account fields
func (r *QueryAccountResponse) Base() *BaseAccount {
	if r == nil || r.Account == nil {
		return nil
	}
	if r.Account.Wrapped != nil {
		return r.Account.Wrapped
	}
	return &r.Account.BaseAccount
}

// Numbers parses account number and sequence
func (a *BaseAccount) Numbers() (accountNumber, sequence uint64, err error) {
	if accountNumber, err = strconv.ParseUint(a.AccountNumber, 10, 64); err != nil {
		return 0, 0, err
	}
	if a.Sequence == "" {
		return accountNumber, 0, nil
	}
	sequence, err = strconv.ParseUint(a.Sequence, 10, 64)
	return accountNumber, sequence, err
}

// GetLatestBlockResponse /cosmos/base/tendermint/v1beta1/blocks/latest
type GetLatestBlockResponse struct {
	Block *struct {
		Header *struct {
			ChainID string `json:"chain_id"`
			Height  string `json:"height"`
		} `json:"header"`
	} `json:"block"`
}
