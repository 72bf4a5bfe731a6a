// Package server provides JSON/RESTful RPC service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/params"
	"github.com/c2xstation/storefront/rpc/restapi"
	"github.com/c2xstation/storefront/rpc/rpcapi"
)

// MetricsHandler is implemented by recorders that can be scraped
type MetricsHandler interface {
	Handler() http.Handler
}

// StartAPIServer start api server
func StartAPIServer(metricsHandler MetricsHandler) {
	apiServer := params.GetConfig().Server
	if apiServer == nil {
		log.Fatal("start api server without server config")
	}

	router := NewRouter(metricsHandler)

	apiPort := apiServer.Port
	allowedOrigins := apiServer.AllowedOrigins
	maxRequestsLimit := apiServer.MaxRequestsLimit
	if maxRequestsLimit <= 0 {
		maxRequestsLimit = 10 // default value
	}

	corsOptions := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST"}),
	}
	if len(allowedOrigins) != 0 {
		corsOptions = append(corsOptions,
			handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
			handlers.AllowedOrigins(allowedOrigins),
		)
	}

	log.Info("JSON RPC service listen and serving", "port", apiPort, "allowedOrigins", allowedOrigins)
	lmt := tollbooth.NewLimiter(float64(maxRequestsLimit),
		&limiter.ExpirableOptions{
			DefaultExpirationTTL: 600 * time.Second,
		},
	)
	handler := tollbooth.LimitHandler(lmt, handlers.CORS(corsOptions...)(router))
	svr := http.Server{
		Addr:         fmt.Sprintf(":%v", apiPort),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		Handler:      handler,
	}
	go func() {
		if err := svr.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) && utils.IsCleanuping() {
				return
			}
			log.Fatal("ListenAndServe error", "err", err)
		}
	}()

	utils.TopWaitGroup.Add(1)
	go utils.WaitAndCleanup(func() { doCleanup(&svr) })
}

func doCleanup(svr *http.Server) {
	defer utils.TopWaitGroup.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := svr.Shutdown(ctx); err != nil {
		log.Error("Server Shutdown failed", "err", err)
	}
	log.Info("Close http server success")
}

// NewRouter registers the rpc service and the rest routes.
// A nil metricsHandler leaves /metrics unrouted.
func NewRouter(metricsHandler MetricsHandler) *mux.Router {
	r := mux.NewRouter()

	rpcserver := rpc.NewServer()
	rpcserver.RegisterCodec(rpcjson.NewCodec(), "application/json")
	err := rpcserver.RegisterService(new(rpcapi.StorefrontAPI), "store")
	if err != nil {
		log.Fatal("start rpc service failed", "err", err)
	}

	r.Handle("/rpc", rpcserver)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler.Handler()).Methods("GET")
	}

	r.HandleFunc("/healthz", restapi.HealthHandler).Methods("GET")
	r.HandleFunc("/versioninfo", restapi.VersionInfoHandler).Methods("GET")
	r.HandleFunc("/serverinfo", restapi.ServerInfoHandler).Methods("GET")
	r.HandleFunc("/products/{gameid}", restapi.GetProductsHandler).Methods("GET")
	r.HandleFunc("/loginurl/{gameid}", restapi.GetLoginURLHandler).Methods("GET")
	r.HandleFunc("/balances/{address}", restapi.GetBalancesHandler).Methods("GET")
	r.HandleFunc("/decode", restapi.DecodePayloadHandler).Methods("GET", "POST")
	r.HandleFunc("/txstatus/{txhash}", restapi.GetTxStatusHandler).Methods("GET")
	r.HandleFunc("/redirect", restapi.RedirectHandler).Methods("GET")
	return r
}
