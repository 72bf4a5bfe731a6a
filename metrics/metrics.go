// Package metrics records checkout counters and latencies.
package metrics

import "time"

// metric names
const (
	CheckoutTotal   = "checkout"
	PollTotal       = "confirm_poll"
	CheckoutLatency = "checkout"
	ConfirmLatency  = "confirm"
)

// Recorder receives counters and latencies.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
