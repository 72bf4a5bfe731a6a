// Package purchase runs a checkout from payment intent to on-chain confirmation.
package purchase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/c2xstation/storefront/common"
	"github.com/c2xstation/storefront/confirm"
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/metrics"
	"github.com/c2xstation/storefront/session"
	"github.com/c2xstation/storefront/txs"
	"github.com/c2xstation/storefront/wallet"
)

// progress texts shown while waiting for confirmation
const (
	ProgressTitle  = "Transaction in progress"
	ProgressDetail = "Broadcasted. Waiting for the network to confirm (~5–6 seconds)."
)

// Backend creates payment intents.
type Backend interface {
	RequestPayment(ctx context.Context, req *hive.PaymentRequest) (*hive.PaymentIntent, error)
}

// Confirmer waits for a tx to land.
type Confirmer interface {
	Poll(ctx context.Context, txHash string) *confirm.Result
}

// Progress shows a busy indicator. The returned func dismisses it.
type Progress interface {
	Begin(title, detail string) (end func())
}

type noopProgress struct{}

func (noopProgress) Begin(string, string) func() { return func() {} }

// Receipt describes a completed checkout.
type Receipt struct {
	RequestID     string          `json:"requestId"`
	TxHash        string          `json:"txHash"`
	TransactionID string          `json:"transactionId,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	ExplorerURL   string          `json:"explorerUrl,omitempty"`
	Product       *hive.Product   `json:"product"`
	Outcome       confirm.Outcome `json:"-"`
	Unit          string          `json:"unit"`
}

// Orchestrator runs one checkout at a time.
type Orchestrator struct {
	backend   Backend
	sessions  session.Repository
	confirmer Confirmer

	walletMu sync.RWMutex
	wallet   wallet.Wallet

	progress     Progress
	recorder     metrics.Recorder
	decoders     []txs.Strategy
	explorerURL  func(txHash string) string
	onTransition func(*Transition)
	now          func() time.Time

	inFlight atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWallet connects a wallet.
func WithWallet(w wallet.Wallet) Option {
	return func(o *Orchestrator) { o.wallet = w }
}

// WithProgress sets the busy indicator.
func WithProgress(p Progress) Option {
	return func(o *Orchestrator) { o.progress = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithDecoders replaces the payload decoders.
func WithDecoders(strategies []txs.Strategy) Option {
	return func(o *Orchestrator) { o.decoders = strategies }
}

// WithExplorer sets how receipts link to a block explorer.
func WithExplorer(fn func(txHash string) string) Option {
	return func(o *Orchestrator) { o.explorerURL = fn }
}

// WithTransitionHook observes every state change.
func WithTransitionHook(fn func(*Transition)) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// WithClock sets the receipt clock.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator new checkout orchestrator
func NewOrchestrator(backend Backend, sessions session.Repository, confirmer Confirmer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:   backend,
		sessions:  sessions,
		confirmer: confirmer,
		progress:  noopProgress{},
		recorder:  metrics.NoopRecorder{},
		decoders:  txs.DefaultStrategies,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ConnectWallet sets or clears (nil) the wallet used by later checkouts.
// A running checkout keeps the wallet it started with.
func (o *Orchestrator) ConnectWallet(w wallet.Wallet) {
	o.walletMu.Lock()
	o.wallet = w
	o.walletMu.Unlock()
}

func (o *Orchestrator) connectedWallet() wallet.Wallet {
	o.walletMu.RLock()
	defer o.walletMu.RUnlock()
	return o.wallet
}

// InFlight reports whether a checkout is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

type checkout struct {
	o         *Orchestrator
	wallet    wallet.Wallet
	requestID string
	state     State
	tx        *txs.SignableTransaction
	start     time.Time
}

func (c *checkout) to(state State) {
	c.emit(&Transition{RequestID: c.requestID, From: c.state, To: state, Tx: c.tx})
	c.state = state
}

func (c *checkout) emit(t *Transition) {
	log.Debug("checkout transition", "requestId", c.requestID, "from", t.From, "to", t.To, "reason", t.Reason)
	if c.o.onTransition != nil {
		c.o.onTransition(t)
	}
}

func (c *checkout) fail(reason Reason, message string, err error) *Error {
	log.Warn("checkout failed", "requestId", c.requestID, "state", c.state, "reason", reason, "err", err)
	c.emit(&Transition{RequestID: c.requestID, From: c.state, To: Failed, Reason: reason, Tx: c.tx})
	c.state = Failed
	return newError(reason, message, err)
}

func (c *checkout) cancel(err error) *Error {
	log.Info("checkout cancelled by user", "requestId", c.requestID, "state", c.state, "err", err)
	c.to(CancelledByUser)
	c.to(Idle)
	return newError(ReasonCancelledByUser, "", ErrCancelledByUser)
}

func (c *checkout) record(err error) {
	labels := map[string]string{"outcome": c.state.String(), "reason": string(ReasonOf(err))}
	c.o.recorder.IncCounter(metrics.CheckoutTotal, labels)
	c.o.recorder.ObserveLatency(metrics.CheckoutLatency, time.Since(c.start), labels)
}

// Checkout buys product with the connected wallet and the cached game
// login. Only one checkout runs at a time, a concurrent call returns
// ErrCheckoutInProgress. Once the tx is broadcast, cancelling ctx no
// longer stops the confirmation wait.
func (o *Orchestrator) Checkout(ctx context.Context, product *hive.Product) (receipt *Receipt, err error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer o.inFlight.Store(false)

	c := &checkout{o: o, requestID: uuid.New(), state: Idle, start: time.Now()}
	defer func() { c.record(err) }()

	req, verr := c.validate(ctx, product)
	if verr != nil {
		return nil, verr
	}

	c.to(RequestingIntent)
	log.Info("checkout start", "requestId", c.requestID, "address", req.Address,
		"gameId", req.GameID, "playerId", req.PlayerID, "userId", req.UserID, "productCode", req.ProductCode)
	intent, perr := c.requestIntent(ctx, req)
	if perr != nil {
		return nil, perr
	}

	tx, derr := c.decode(intent)
	if derr != nil {
		return nil, derr
	}

	c.tx = tx
	c.to(AwaitingSignature)
	result, werr := c.wallet.Post(ctx, tx)
	if werr != nil {
		if wallet.IsUserCancellation(werr) {
			return nil, c.cancel(werr)
		}
		return nil, c.fail(ReasonOnChainSubmission, MsgSubmissionFailed, werr)
	}

	c.to(Broadcasting)
	txHash, berr := c.checkBroadcast(result, intent)
	if berr != nil {
		return nil, berr
	}

	c.to(ConfirmingOnChain)
	outcome := c.waitConfirm(context.WithoutCancel(ctx), txHash)
	if outcome == confirm.OnChainFailure {
		return nil, c.fail(ReasonOnChainRejected, MsgConfirmRejected, ErrTxFailedOnChain)
	}

	c.to(Completed)
	receipt = &Receipt{
		RequestID:     c.requestID,
		TxHash:        txHash,
		TransactionID: intent.TransactionID,
		Timestamp:     o.now(),
		Product:       product,
		Outcome:       outcome,
		Unit:          "EA",
	}
	if o.explorerURL != nil {
		receipt.ExplorerURL = o.explorerURL(txHash)
	}
	log.Info("checkout completed", "requestId", c.requestID, "txHash", common.ShortHash(txHash), "outcome", outcome)
	return receipt, nil
}

func (c *checkout) validate(ctx context.Context, product *hive.Product) (*hive.PaymentRequest, error) {
	w := c.o.connectedWallet()
	if w == nil || w.Address() == "" {
		return nil, c.fail(ReasonValidation, MsgWalletNotConnected, nil)
	}
	c.wallet = w
	var profile *session.Profile
	if c.o.sessions != nil {
		var err error
		profile, err = c.o.sessions.Get(ctx)
		if err != nil && !errors.Is(err, session.ErrNoProfile) {
			log.Warn("read session profile failed", "requestId", c.requestID, "err", err)
		}
	}
	// missing fields mean no login, present but malformed ones an invalid login
	if profile == nil || profile.GameID == 0 || profile.PID == "" || profile.GroupID == "" {
		return nil, c.fail(ReasonValidation, MsgLoginNotFound, nil)
	}
	if product == nil || product.Code == "" {
		return nil, c.fail(ReasonValidation, MsgMissingProduct, nil)
	}
	if !profile.Valid() {
		return nil, c.fail(ReasonValidation, MsgLoginInvalid, nil)
	}
	return &hive.PaymentRequest{
		Address:     w.Address(),
		GameID:      profile.GameID,
		PlayerID:    profile.PlayerID(),
		UserID:      profile.UserID(),
		ProductCode: product.Code,
	}, nil
}

func (c *checkout) requestIntent(ctx context.Context, req *hive.PaymentRequest) (*hive.PaymentIntent, error) {
	intent, err := c.o.backend.RequestPayment(ctx, req)
	var serverErr *hive.ServerError
	switch {
	case err == nil:
		return intent, nil
	case errors.Is(err, hive.ErrMissingUnsignedTx):
		c.to(DecodingPayload)
		return nil, c.fail(ReasonMalformedPayload, MsgNoUnsignedTx, err)
	case errors.As(err, &serverErr) && serverErr.LoginRequired():
		return nil, c.fail(ReasonSessionExpired, MsgSignInRequired, err)
	default:
		return nil, c.fail(ReasonServerRejected, MsgPaymentFailed, err)
	}
}

func (c *checkout) decode(intent *hive.PaymentIntent) (*txs.SignableTransaction, error) {
	c.to(DecodingPayload)
	decoded := txs.DecodeWith(c.o.decoders, intent.UnsignedTx)
	if decoded == nil {
		log.Warn("unsigned tx not decodable", "requestId", c.requestID, "length", len(intent.UnsignedTx))
		return nil, c.fail(ReasonMalformedPayload, MsgUnparsableTx, ErrUndecodablePayload)
	}
	tx := txs.BuildSignable(decoded)
	if len(tx.Messages) == 0 {
		log.Warn("unsigned tx has no messages", "requestId", c.requestID, "strategy", decoded.Strategy)
		return nil, c.fail(ReasonMalformedPayload, MsgNoMessages, ErrNoMessages)
	}
	types := make([]string, 0, len(tx.Messages))
	for _, msg := range tx.Messages {
		types = append(types, msg.TypeURL())
	}
	log.Info("unsigned tx decoded", "requestId", c.requestID, "strategy", decoded.Strategy,
		"msgs", types, "memo", tx.Memo, "hasFee", tx.Fee != nil)
	return tx, nil
}

func (c *checkout) checkBroadcast(result *wallet.BroadcastResult, intent *hive.PaymentIntent) (string, error) {
	if result != nil && !result.Success {
		log.Warn("broadcast reported failure", "requestId", c.requestID, "rawLog", result.RawLog)
		return "", c.fail(ReasonOnChainRejected, MsgBroadcastRejected, ErrBroadcastFailed)
	}
	var txHash string
	if result != nil {
		txHash = result.TxHash
	}
	txHash = common.FirstNonEmpty(txHash, intent.TransactionID)
	if txHash == "" {
		return "", c.fail(ReasonMissingHash, MsgMissingHash, ErrNoTxHash)
	}
	return txHash, nil
}

// waitConfirm shows progress while polling and always dismisses it.
func (c *checkout) waitConfirm(ctx context.Context, txHash string) confirm.Outcome {
	end := c.o.progress.Begin(ProgressTitle, ProgressDetail)
	defer end()

	if c.o.confirmer == nil {
		log.Info("no confirmer, skip confirmation", "requestId", c.requestID, "txHash", txHash)
		return confirm.NoEndpoint
	}
	start := time.Now()
	result := c.o.confirmer.Poll(ctx, txHash)
	labels := map[string]string{"outcome": result.Outcome.String()}
	c.o.recorder.IncCounter(metrics.PollTotal, labels)
	c.o.recorder.ObserveLatency(metrics.ConfirmLatency, time.Since(start), labels)

	switch result.Outcome {
	case confirm.Timeout, confirm.NoEndpoint:
		log.Warn("tx not confirmed, treat as success", "requestId", c.requestID, "txHash", txHash,
			"outcome", result.Outcome, "attempts", result.Attempts)
	}
	return result.Outcome
}
