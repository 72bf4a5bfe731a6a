// Package storeapi implements the storefront api shared by the REST and JSON-RPC servers.
package storeapi

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/c2xstation/storefront/common"
	"github.com/c2xstation/storefront/confirm"
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/metrics"
	"github.com/c2xstation/storefront/params"
	"github.com/c2xstation/storefront/txs"
)

// rpc error codes
const (
	errCodeInternal    rpcjson.ErrorCode = -32000
	errCodeInvalidArgs rpcjson.ErrorCode = -32099
	errCodeNotFound    rpcjson.ErrorCode = -32098
)

var (
	backend   *hive.Client
	lcdClient *lcd.Client
	recorder  metrics.Recorder = metrics.NoopRecorder{}

	errNotInitialized = errors.New("store api is not initialized")
)

func newRPCError(ec rpcjson.ErrorCode, message string) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
	}
}

func newRPCInternalError(err error) error {
	return newRPCError(errCodeInternal, "rpcError: "+err.Error())
}

// Init sets the backend and lcd clients used by the api
func Init(backendClient *hive.Client, chainClient *lcd.Client) {
	backend = backendClient
	lcdClient = chainClient
}

// SetRecorder records confirmation polls of GetTxStatus on r
func SetRecorder(r metrics.Recorder) {
	if r != nil {
		recorder = r
	}
}

// GetServerInfo get server info
func GetServerInfo() *ServerInfo {
	config := params.GetConfig()
	return &ServerInfo{
		Identifier: config.Identifier,
		Version:    params.VersionWithMeta,
		Network:    config.Chain.Network,
		ChainID:    config.Chain.ChainID,
		LCD:        config.Chain.LCD,
		APIOrigin:  config.API.Origin,
	}
}

func parseGameID(gameIDStr string) (int, error) {
	if strings.TrimSpace(gameIDStr) == "" {
		return params.GetConfig().DefaultGameID, nil
	}
	gameID, err := common.GetIntFromStr(gameIDStr)
	if err != nil || gameID <= 0 {
		return 0, newRPCError(errCodeInvalidArgs, "wrong game id "+gameIDStr)
	}
	return gameID, nil
}

// GetProducts get the catalog of a game
func GetProducts(ctx context.Context, gameIDStr string) (*hive.Catalog, error) {
	if backend == nil {
		return nil, newRPCInternalError(errNotInitialized)
	}
	gameID, err := parseGameID(gameIDStr)
	if err != nil {
		return nil, err
	}
	catalog, err := backend.Products(ctx, gameID)
	if err != nil {
		log.Warn("[api] get products failed", "gameId", gameID, "err", err)
		return nil, newRPCInternalError(err)
	}
	return catalog, nil
}

// GetLoginURL get the hive login url of a game
func GetLoginURL(ctx context.Context, gameIDStr string) (string, error) {
	catalog, err := GetProducts(ctx, gameIDStr)
	if err != nil {
		return "", err
	}
	if catalog.Game == nil {
		return "", newRPCError(errCodeNotFound, "game not found")
	}
	loginURL, err := hive.LoginURL(catalog.Game, LoginOptions())
	if err != nil {
		return "", newRPCError(errCodeInvalidArgs, err.Error())
	}
	return loginURL, nil
}

// LoginOptions builds login options from config
func LoginOptions() *hive.LoginOptions {
	config := params.GetConfig().Login
	return &hive.LoginOptions{
		Origin:         config.RedirectBase,
		DefaultHiveURL: config.HiveURL,
		Country:        config.Country,
		Language:       config.Language,
	}
}

// GetBalances get the balances of the configured display denoms
func GetBalances(ctx context.Context, address string) (*BalancesResult, error) {
	if lcdClient == nil {
		return nil, newRPCInternalError(errNotInitialized)
	}
	if address == "" {
		return nil, newRPCError(errCodeInvalidArgs, "empty address")
	}
	coins, err := lcdClient.GetBalances(ctx, address)
	if err != nil {
		return nil, newRPCInternalError(err)
	}
	amounts := make(map[string]string, len(coins))
	for _, coin := range coins {
		amounts[coin.Denom] = coin.Amount
	}

	chain := params.GetConfig().Chain
	result := &BalancesResult{Address: address, Balances: make([]*lcd.Balance, 0, len(chain.Denoms))}
	for symbol, denom := range chain.Denoms {
		result.Balances = append(result.Balances, lcd.NewBalance(symbol, denom, amounts[denom], params.GetDecimals(denom)))
	}
	sort.Slice(result.Balances, func(i, j int) bool {
		return result.Balances[i].Symbol < result.Balances[j].Symbol
	})
	return result, nil
}

// DecodePayload decode an unsigned tx payload into a signable transaction
func DecodePayload(payload string) (*DecodeResult, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, newRPCError(errCodeInvalidArgs, "empty payload")
	}
	decoded := txs.Decode(payload)
	if decoded == nil {
		return nil, newRPCError(errCodeInvalidArgs, "unable to parse unsignedTx")
	}
	return &DecodeResult{
		Strategy: decoded.Strategy,
		Tx:       txs.BuildSignable(decoded),
	}, nil
}

// GetTxStatus get tx status. With wait it polls until confirmed, failed or timeout.
func GetTxStatus(ctx context.Context, txHash string, wait bool) (*TxStatus, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, newRPCError(errCodeInvalidArgs, "empty tx hash")
	}
	config := params.GetConfig()
	status := &TxStatus{
		TxHash:      txHash,
		Status:      TxStatusPending,
		ExplorerURL: config.Chain.ExplorerTxURL(txHash),
	}

	var res *lcd.TxResponse
	if wait {
		var endpoint string
		if len(config.Chain.LCD) > 0 {
			endpoint = config.Chain.LCD[0]
		}
		poller := confirm.NewPoller(endpoint, config.Confirm.ConfirmTimeout(), config.Confirm.ConfirmInterval())
		start := time.Now()
		result := poller.Poll(ctx, txHash)
		labels := map[string]string{"outcome": result.Outcome.String()}
		recorder.IncCounter(metrics.PollTotal, labels)
		recorder.ObserveLatency(metrics.ConfirmLatency, time.Since(start), labels)
		res = result.Response
	} else if lcdClient != nil {
		if tx, err := lcdClient.GetTransactionByHash(ctx, txHash); err == nil {
			res = tx.Response()
		}
	}
	if res == nil || res.Code == nil {
		return status, nil
	}
	status.Code = res.Code
	status.Height = res.Height
	status.RawLog = res.RawLog
	switch {
	case *res.Code == 0:
		status.Status = TxStatusConfirmed
	case *res.Code > 0:
		status.Status = TxStatusFailed
	}
	return status, nil
}

// ParseRedirect decode a hive login redirect. A successful login is
// confirmed with the backend.
func ParseRedirect(ctx context.Context, rawQuery string) (*RedirectResult, error) {
	redirect, err := hive.ParseRedirect(rawQuery)
	if err != nil {
		return nil, newRPCError(errCodeInvalidArgs, err.Error())
	}
	result := &RedirectResult{GameID: redirect.GameID}
	if redirect.Res == "" {
		return result, nil
	}
	login, err := hive.DecodeLoginResult(redirect.Res)
	if err != nil {
		return nil, newRPCError(errCodeInvalidArgs, err.Error())
	}
	result.Code = string(login.Code)
	result.PID = string(login.PID)
	if !login.OK() {
		log.Info("[api] hive login not successful", "gameId", redirect.GameID, "code", login.Code)
		return result, nil
	}
	if backend == nil {
		return nil, newRPCInternalError(errNotInitialized)
	}
	gameID, err := parseGameID(redirect.GameID)
	if err != nil {
		return nil, err
	}
	user, err := backend.Login(ctx, gameID, string(login.PID), string(login.Token))
	if err != nil {
		log.Warn("[api] confirm hive login failed", "gameId", gameID, "pid", login.PID, "err", err)
		return result, nil
	}
	result.Success = true
	result.User = user
	return result, nil
}
