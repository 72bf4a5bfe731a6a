// Package lcd is a REST client of the cosmos light client daemon.
package lcd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	tmtypes "github.com/tendermint/tendermint/types"

	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/rpc/client"
)

// rest paths
const (
	LatestBlock = "/cosmos/base/tendermint/v1beta1/blocks/latest"
	TxByHash    = "/cosmos/tx/v1beta1/txs/"
	AccountInfo = "/cosmos/auth/v1beta1/accounts/"
	Balances    = "/cosmos/bank/v1beta1/balances/"
	BroadTx     = "/cosmos/tx/v1beta1/txs"

	BroadcastModeSync = "BROADCAST_MODE_SYNC"

	broadcastTimeout = 120 // seconds
)

// lcd errors
var (
	ErrNoEndpoint     = errors.New("no lcd endpoint")
	ErrRPCQueryError  = errors.New("rpc query error")
	ErrTxNotFound     = errors.New("tx not found")
	ErrBroadcastTx    = errors.New("broadcast tx failed")
	ErrAccountMissing = errors.New("account not found")
)

// Client queries the first responsive endpoint of BaseUrls
type Client struct {
	BaseUrls []string
}

// NewClient new client, blank urls are dropped
func NewClient(urls ...string) *Client {
	c := &Client{}
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			c.BaseUrls = append(c.BaseUrls, url)
		}
	}
	return c
}

func joinURLPath(url, path string) string {
	url = strings.TrimRight(url, "/")
	if !strings.HasPrefix(path, "/") {
		url += "/"
	}
	return url + path
}

// QueryTx queries one endpoint for a tx. The error is non nil for any
// transport problem or non 200 status.
func QueryTx(ctx context.Context, endpoint, txHash string) (*GetTxResponse, error) {
	var result GetTxResponse
	restAPI := joinURLPath(endpoint, TxByHash+txHash)
	if err := client.RPCGetWithContext(ctx, &result, restAPI); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransactionByHash get tx by hash
func (c *Client) GetTransactionByHash(ctx context.Context, txHash string) (*GetTxResponse, error) {
	if len(c.BaseUrls) == 0 {
		return nil, ErrNoEndpoint
	}
	for _, url := range c.BaseUrls {
		result, err := QueryTx(ctx, url, txHash)
		if err == nil && result.Response() != nil {
			return result, nil
		}
		log.Trace("GetTransactionByHash failed", "url", url, "txHash", txHash, "err", err)
	}
	return nil, ErrTxNotFound
}

// GetChainID get chain id from latest block
func (c *Client) GetChainID(ctx context.Context) (string, error) {
	for _, url := range c.BaseUrls {
		var result GetLatestBlockResponse
		restAPI := joinURLPath(url, LatestBlock)
		if err := client.RPCGetWithContext(ctx, &result, restAPI); err == nil {
			if result.Block != nil && result.Block.Header != nil && result.Block.Header.ChainID != "" {
				return result.Block.Header.ChainID, nil
			}
		} else {
			log.Warn("GetChainID failed", "url", restAPI, "err", err)
		}
	}
	return "", ErrRPCQueryError
}

// GetBaseAccount get account number and sequence
func (c *Client) GetBaseAccount(ctx context.Context, address string) (*BaseAccount, error) {
	for _, url := range c.BaseUrls {
		var result QueryAccountResponse
		restAPI := joinURLPath(url, AccountInfo+address)
		if err := client.RPCGetWithContext(ctx, &result, restAPI); err == nil {
			if base := result.Base(); base != nil {
				return base, nil
			}
			return nil, ErrAccountMissing
		} else {
			log.Warn("GetBaseAccount failed", "url", restAPI, "err", err)
		}
	}
	return nil, ErrRPCQueryError
}

// GetBalances get all balances of address
func (c *Client) GetBalances(ctx context.Context, address string) ([]CoinResponse, error) {
	for _, url := range c.BaseUrls {
		var result QueryAllBalancesResponse
		restAPI := joinURLPath(url, Balances+address)
		if err := client.RPCGetWithContext(ctx, &result, restAPI); err == nil {
			return result.Balances, nil
		} else {
			log.Warn("GetBalances failed", "url", restAPI, "err", err)
		}
	}
	return nil, ErrRPCQueryError
}

// GetDenomBalance get balance of one denom, zero if absent
func (c *Client) GetDenomBalance(ctx context.Context, address, denom string) (string, error) {
	balances, err := c.GetBalances(ctx, address)
	if err != nil {
		return "0", err
	}
	for _, coin := range balances {
		if coin.Denom == denom {
			return coin.Amount, nil
		}
	}
	return "0", nil
}

// BroadcastTx broadcasts signed tx bytes in sync mode. It returns the
// response of the first endpoint that accepts the request.
func (c *Client) BroadcastTx(ctx context.Context, txBytes []byte) (*TxResponse, error) {
	if len(c.BaseUrls) == 0 {
		return nil, ErrNoEndpoint
	}
	req := &BroadcastTxRequest{
		TxBytes: base64.StdEncoding.EncodeToString(txBytes),
		Mode:    BroadcastModeSync,
	}
	var lastErr error
	for _, url := range c.BaseUrls {
		var result BroadcastTxResponse
		restAPI := joinURLPath(url, BroadTx)
		err := client.RPCPostJSONWithContext(ctx, &result, restAPI, req, broadcastTimeout)
		if err == nil && result.TxResponse != nil {
			if result.TxResponse.TxHash == "" {
				result.TxResponse.TxHash = TxHash(txBytes)
			}
			return result.TxResponse, nil
		}
		lastErr = err
		log.Warn("BroadcastTx failed", "url", restAPI, "err", err)
	}
	return nil, fmt.Errorf("%w: %v", ErrBroadcastTx, lastErr)
}

// TxHash is the upper hex sha256 of tx bytes
func TxHash(txBytes []byte) string {
	return fmt.Sprintf("%X", tmtypes.Tx(txBytes).Hash())
}
