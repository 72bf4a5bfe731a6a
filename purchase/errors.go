package purchase

import (
	"errors"
	"fmt"
)

// Reason classifies a failed checkout.
type Reason string

// failure reasons
const (
	ReasonValidation        Reason = "validation"
	ReasonSessionExpired    Reason = "sessionExpired"
	ReasonServerRejected    Reason = "serverRejected"
	ReasonMalformedPayload  Reason = "malformedPayload"
	ReasonOnChainSubmission Reason = "onChainSubmission"
	ReasonOnChainRejected   Reason = "onChainRejected"
	ReasonMissingHash       Reason = "missingHash"
	ReasonCancelledByUser   Reason = "cancelledByUser"
)

// user facing messages
const (
	MsgWalletNotConnected = "Wallet is not connected."
	MsgLoginNotFound      = "Game login info not found."
	MsgMissingProduct     = "Product code is missing."
	MsgLoginInvalid       = "Game login info is missing or invalid. Please sign in again."
	MsgSignInRequired     = "You need to sign in to continue."
	MsgPaymentFailed      = "Payment request failed. Please try again."
	MsgNoUnsignedTx       = "Server did not return unsignedTx."
	MsgUnparsableTx       = "Unable to parse unsignedTx."
	MsgNoMessages         = "The transaction has no messages to sign. Please contact support."
	MsgSubmissionFailed   = "Transaction failed on-chain. The network rejected your transaction (e.g., insufficient funds, invalid parameters, or fee too low). Please try again."
	MsgBroadcastRejected  = "Transaction failed on-chain. Please check your balances and try again."
	MsgConfirmRejected    = "Transaction failed on-chain. Please check your balances/fees and try again."
	MsgMissingHash        = "Broadcast succeeded but no txhash found."
)

// purchase errors
var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrCancelledByUser    = errors.New("cancelled by user")
	ErrNoMessages         = errors.New("normalized transaction has no messages")
	ErrUndecodablePayload = errors.New("no decoder accepted the payload")
	ErrBroadcastFailed    = errors.New("broadcast reported failure")
	ErrNoTxHash           = errors.New("no tx hash from wallet or server")
	ErrTxFailedOnChain    = errors.New("tx failed on chain")
)

// Error is a classified checkout failure. Message is safe to show to the
// user and is empty for cancellations.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func newError(reason Reason, message string, err error) *Error {
	return &Error{Reason: reason, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Reason, e.Message)
	}
	return fmt.Sprintf("%v: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Silent reports whether err should be dropped without telling the user.
func Silent(err error) bool {
	return errors.Is(err, ErrCancelledByUser)
}

// ReasonOf returns the reason of a classified error, or empty.
func ReasonOf(err error) Reason {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Reason
	}
	return ""
}

// UserMessage returns what to show for err. Unclassified errors get the
// generic payment failure text.
func UserMessage(err error) string {
	if err == nil || Silent(err) {
		return ""
	}
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return MsgPaymentFailed
}
