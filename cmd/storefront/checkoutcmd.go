package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/confirm"
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/metrics"
	"github.com/c2xstation/storefront/params"
	"github.com/c2xstation/storefront/purchase"
	"github.com/c2xstation/storefront/session"
	"github.com/c2xstation/storefront/txs"
	"github.com/c2xstation/storefront/wallet"
)

var (
	checkoutCommand = &cli.Command{
		Name:      "checkout",
		Usage:     "buy a product with the configured wallet",
		Action:    checkout,
		ArgsUsage: "<productCode>",
		Flags: append([]cli.Flag{
			utils.GameIDFlag,
			redirectFlag,
			groupIDFlag,
			paySymbolFlag,
			yesFlag,
			pushGatewayFlag,
		}, utils.CommonLogFlags...),
		Description: `
buy a product of the logged in game with the key configured in [Wallet].
with --redirect the hive login is confirmed first in the same process.
with --pushgateway the checkout metrics are pushed when the command ends.
`,
	}

	redirectFlag = &cli.StringFlag{
		Name:  "redirect",
		Usage: "hive login redirect url to confirm before checkout",
	}

	paySymbolFlag = &cli.StringFlag{
		Name:  "paysymbol",
		Usage: "symbol of the balance the product price is quoted against",
		Value: "XPLA",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "sign without asking for confirmation",
	}

	pushGatewayFlag = &cli.StringFlag{
		Name:  "pushgateway",
		Usage: "prometheus pushgateway url to push checkout metrics to",
	}

	errNoWalletKey    = errors.New("no wallet key, please set [Wallet] PrivateKeyFile in config")
	errNoSuchProduct  = errors.New("no such product")
	errUserDeniedSign = wallet.NewError("UserDenied", "user denied the signature")
)

// cliProgress shows progress as log lines
type cliProgress struct{}

func (cliProgress) Begin(title, detail string) func() {
	log.Info(title, "detail", detail)
	return func() { log.Info(title + " done") }
}

// promptWallet asks on the terminal before handing the tx to the inner wallet
type promptWallet struct {
	wallet.Wallet
	in  io.Reader
	out io.Writer
}

func (w *promptWallet) Post(ctx context.Context, tx *txs.SignableTransaction) (*wallet.BroadcastResult, error) {
	fmt.Fprintf(w.out, "sign %v message(s) from %v", len(tx.Messages), w.Address())
	if tx.Fee != nil {
		fmt.Fprintf(w.out, " with fee %v gas %v", tx.Fee.Amount, tx.Fee.GasLimit)
	}
	fmt.Fprint(w.out, "? [y/N] ")
	answer, _ := bufio.NewReader(w.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return w.Wallet.Post(ctx, tx)
	default:
		return nil, errUserDeniedSign
	}
}

// cleanupContext is cancelled when the process receives a stop signal
func cleanupContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-utils.CleanupChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func checkout(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	productCode, err := requireOneArg(ctx, "productCode")
	if err != nil {
		return err
	}
	loadConfig(ctx)
	config := params.GetConfig()
	if config.Wallet == nil || len(config.Wallet.GetPrivateKey()) == 0 {
		return errNoWalletKey
	}

	runCtx, cancel := cleanupContext(ctx.Context)
	defer cancel()

	lcdClient := newLCDClient(config)
	backend := newBackend(config)
	storeapi.Init(backend, lcdClient)

	sessions, err := session.NewRepository(config.Session)
	if err != nil {
		return err
	}
	defer sessions.Close()

	if redirect := ctx.String(redirectFlag.Name); redirect != "" {
		if _, err = confirmLogin(runCtx, sessions, redirect, ctx.String(groupIDFlag.Name)); err != nil {
			return err
		}
	}

	gameID := config.DefaultGameID
	if profile, perr := sessions.Get(runCtx); perr == nil {
		gameID = profile.GameID
	}
	gameID = utils.GetGameID(ctx, gameID)
	product, err := findProduct(runCtx, backend, gameID, productCode)
	if err != nil {
		return err
	}

	keyWallet, err := wallet.NewKeyWallet(config.Wallet.GetPrivateKey(), lcdClient,
		wallet.WithChainID(config.Chain.ChainID),
		wallet.WithGasLimit(config.Wallet.GasLimit),
		wallet.WithGasPrice(config.Wallet.GasPrice),
	)
	if err != nil {
		return err
	}
	logQuote(runCtx, lcdClient, keyWallet.Address(), ctx.String(paySymbolFlag.Name), product)

	var signer wallet.Wallet = keyWallet
	if !ctx.Bool(yesFlag.Name) {
		signer = &promptWallet{Wallet: keyWallet, in: os.Stdin, out: os.Stdout}
	}

	var confirmer purchase.Confirmer
	if len(config.Chain.LCD) > 0 {
		confirmer = confirm.NewPoller(config.Chain.LCD[0], config.Confirm.ConfirmTimeout(), config.Confirm.ConfirmInterval())
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if gateway := ctx.String(pushGatewayFlag.Name); gateway != "" {
		prom := metrics.NewPrometheusRecorder()
		recorder = prom
		defer pushMetrics(prom, gateway)
	}

	orchestrator := purchase.NewOrchestrator(backend, sessions, confirmer,
		purchase.WithWallet(signer),
		purchase.WithProgress(cliProgress{}),
		purchase.WithRecorder(recorder),
		purchase.WithExplorer(config.Chain.ExplorerTxURL),
	)
	receipt, err := orchestrator.Checkout(runCtx, product)
	if err != nil {
		if purchase.Silent(err) {
			log.Info("checkout cancelled")
			return nil
		}
		return errors.New(purchase.UserMessage(err))
	}
	return printJSON(receipt)
}

func pushMetrics(prom *metrics.PrometheusRecorder, gateway string) {
	if err := prom.Push(gateway, clientIdentifier+"_checkout"); err != nil {
		log.Warn("push checkout metrics failed", "gateway", gateway, "err", err)
		return
	}
	log.Info("push checkout metrics success", "gateway", gateway)
}

func findProduct(ctx context.Context, backend *hive.Client, gameID int, productCode string) (*hive.Product, error) {
	catalog, err := backend.Products(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, product := range catalog.Products {
		if product.Code == productCode {
			return product, nil
		}
	}
	return nil, fmt.Errorf("%w '%v' in game %v", errNoSuchProduct, productCode, gameID)
}

// logQuote warns when the balance looks insufficient, the server decides the real price
func logQuote(ctx context.Context, lcdClient *lcd.Client, address, symbol string, product *hive.Product) {
	denom, exist := params.GetConfig().Chain.Denoms[symbol]
	if product.Price == "" || !exist {
		return
	}
	amount, err := lcdClient.GetDenomBalance(ctx, address, denom)
	if err != nil {
		log.Warn("get balance failed", "address", address, "denom", denom, "err", err)
		return
	}
	balance := lcd.NewBalance(symbol, denom, amount, params.GetDecimals(denom))
	quote, err := purchase.QuoteBalance(balance, product.Price.String())
	if err != nil {
		log.Warn("quote price failed", "price", product.Price, "err", err)
		return
	}
	if quote.Insufficient {
		log.Warn("balance may be insufficient", "symbol", symbol, "have", quote.Have, "pay", quote.Pay)
		return
	}
	log.Info("balance after payment", "symbol", symbol, "have", quote.Have, "pay", quote.Pay, "after", quote.After)
}
