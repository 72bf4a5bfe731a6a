// Package confirm polls an LCD endpoint until a broadcast transaction is
// included in a block or the polling budget runs out.
package confirm

import (
	"context"
	"strings"
	"time"

	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/log"
)

// default polling budget
const (
	DefaultTimeout  = 20 * time.Second
	DefaultInterval = 1200 * time.Millisecond
)

// Outcome of a confirmation poll
type Outcome int

// outcomes
const (
	Confirmed Outcome = iota
	OnChainFailure
	Timeout
	NoEndpoint
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case OnChainFailure:
		return "onChainFailure"
	case Timeout:
		return "timeout"
	case NoEndpoint:
		return "noEndpoint"
	default:
		return "unknown"
	}
}

// Result is an outcome with the last known tx response
type Result struct {
	Outcome  Outcome
	Response *lcd.TxResponse
	Attempts int
}

// QueryFunc fetches a tx from one endpoint
type QueryFunc func(ctx context.Context, endpoint, txHash string) (*lcd.GetTxResponse, error)

// Poller queries Endpoint every Interval until Timeout
type Poller struct {
	Endpoint string
	Timeout  time.Duration
	Interval time.Duration

	query QueryFunc
}

// NewPoller new poller, non positive durations use the defaults
func NewPoller(endpoint string, timeout, interval time.Duration) *Poller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		Endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Timeout:  timeout,
		Interval: interval,
		query:    lcd.QueryTx,
	}
}

// Poll queries immediately and then once per Interval. Only a response with
// a numeric code ends polling early. Errors, non 200 statuses and bodies
// without a code are retried. Every query shares the Timeout budget, so a
// hung endpoint cannot hold Poll past it. Cancelling ctx ends polling as Timeout.
func (p *Poller) Poll(ctx context.Context, txHash string) *Result {
	if p.Endpoint == "" {
		log.Info("no lcd endpoint, skip confirmation", "txHash", txHash)
		return &Result{Outcome: NoEndpoint}
	}

	pollCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	result := &Result{Outcome: Timeout}
	for {
		result.Attempts++
		if res := p.queryOnce(pollCtx, txHash); res != nil {
			result.Response = res
			switch code := *res.Code; {
			case code == 0:
				result.Outcome = Confirmed
				return result
			case code > 0:
				result.Outcome = OnChainFailure
				log.Info("tx failed on chain", "txHash", txHash, "code", code, "rawLog", res.RawLog)
				return result
			}
		}
		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				log.Warn("tx confirmation cancelled", "txHash", txHash, "err", err)
			} else {
				log.Warn("tx confirmation timeout", "txHash", txHash, "timeout", p.Timeout, "attempts", result.Attempts)
			}
			return result
		}
	}
}

func (p *Poller) queryOnce(ctx context.Context, txHash string) *lcd.TxResponse {
	res, err := p.query(ctx, p.Endpoint, txHash)
	if err != nil {
		log.Trace("query tx status failed", "txHash", txHash, "err", err)
		return nil
	}
	txRes := res.Response()
	if txRes == nil || txRes.Code == nil {
		return nil
	}
	return txRes
}
