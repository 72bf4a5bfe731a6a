package restapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/params"
)

const maxDecodeBodySize = 1 << 20

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	// Note: must set header before write header
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if err == nil {
		jsonData, _ := json.Marshal(resp)
		_, _ = w.Write(jsonData)
	} else {
		fmt.Fprintln(w, err.Error())
	}
}

// HealthHandler handler
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, "ok", nil)
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	version := params.VersionWithMeta
	writeResponse(w, version, nil)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	serverInfo := storeapi.GetServerInfo()
	writeResponse(w, serverInfo, nil)
}

// GetProductsHandler handler
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := storeapi.GetProducts(r.Context(), vars["gameid"])
	writeResponse(w, res, err)
}

// GetLoginURLHandler handler
func GetLoginURLHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := storeapi.GetLoginURL(r.Context(), vars["gameid"])
	writeResponse(w, res, err)
}

// GetBalancesHandler handler
func GetBalancesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := storeapi.GetBalances(r.Context(), vars["address"])
	writeResponse(w, res, err)
}

// DecodePayloadHandler handler, the payload is the request body or the `payload` query value
func DecodePayloadHandler(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" && r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxDecodeBodySize))
		if err != nil {
			writeResponse(w, nil, err)
			return
		}
		payload = string(body)
	}
	res, err := storeapi.DecodePayload(payload)
	writeResponse(w, res, err)
}

// GetTxStatusHandler handler
func GetTxStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	wait := r.URL.Query().Get("wait") == "true"
	res, err := storeapi.GetTxStatus(r.Context(), vars["txhash"], wait)
	writeResponse(w, res, err)
}

// RedirectHandler handler
func RedirectHandler(w http.ResponseWriter, r *http.Request) {
	res, err := storeapi.ParseRedirect(r.Context(), r.URL.RawQuery)
	writeResponse(w, res, err)
}
