package purchase

import "github.com/c2xstation/storefront/txs"

// State is a checkout step.
type State int

// checkout states
const (
	Idle State = iota
	RequestingIntent
	DecodingPayload
	AwaitingSignature
	Broadcasting
	ConfirmingOnChain
	Completed
	Failed
	CancelledByUser
)

var stateNames = map[State]string{
	Idle:              "idle",
	RequestingIntent:  "requestingIntent",
	DecodingPayload:   "decodingPayload",
	AwaitingSignature: "awaitingSignature",
	Broadcasting:      "broadcasting",
	ConfirmingOnChain: "confirmingOnChain",
	Completed:         "completed",
	Failed:            "failed",
	CancelledByUser:   "cancelledByUser",
}

func (s State) String() string {
	if name, exist := stateNames[s]; exist {
		return name
	}
	return "unknown"
}

// Transition is reported on every state change. Tx is set from
// AwaitingSignature on, Reason only when To is Failed.
type Transition struct {
	RequestID string
	From      State
	To        State
	Reason    Reason
	Tx        *txs.SignableTransaction
}
