package rpcapi

import (
	"net/http"

	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/params"
)

// StorefrontAPI rpc api handler
type StorefrontAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// GetVersionInfo api
func (s *StorefrontAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	version := params.VersionWithMeta
	*result = version
	return nil
}

// GetServerInfo api
func (s *StorefrontAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *storeapi.ServerInfo) error {
	serverInfo := storeapi.GetServerInfo()
	*result = *serverInfo
	return nil
}

// GameArgs args
type GameArgs struct {
	GameID string `json:"gameid"`
}

// GetProducts api
func (s *StorefrontAPI) GetProducts(r *http.Request, args *GameArgs, result *hive.Catalog) error {
	res, err := storeapi.GetProducts(r.Context(), args.GameID)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetLoginURL api
func (s *StorefrontAPI) GetLoginURL(r *http.Request, args *GameArgs, result *string) error {
	res, err := storeapi.GetLoginURL(r.Context(), args.GameID)
	if err == nil {
		*result = res
	}
	return err
}

// GetBalances api
// nolint:gocritic // rpc need result of pointer type
func (s *StorefrontAPI) GetBalances(r *http.Request, args *string, result *storeapi.BalancesResult) error {
	res, err := storeapi.GetBalances(r.Context(), *args)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// DecodePayload api
// nolint:gocritic // rpc need result of pointer type
func (s *StorefrontAPI) DecodePayload(r *http.Request, args *string, result *storeapi.DecodeResult) error {
	res, err := storeapi.DecodePayload(*args)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// TxStatusArgs args
type TxStatusArgs struct {
	TxHash string `json:"txhash"`
	Wait   bool   `json:"wait"`
}

// GetTxStatus api
func (s *StorefrontAPI) GetTxStatus(r *http.Request, args *TxStatusArgs, result *storeapi.TxStatus) error {
	res, err := storeapi.GetTxStatus(r.Context(), args.TxHash, args.Wait)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// ParseRedirect api, args is the raw query of the redirect url
// nolint:gocritic // rpc need result of pointer type
func (s *StorefrontAPI) ParseRedirect(r *http.Request, args *string, result *storeapi.RedirectResult) error {
	res, err := storeapi.ParseRedirect(r.Context(), *args)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}
