// Package wallet defines the wallet contract used by checkout and the
// classifier that tells user cancellations from real failures.
package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/c2xstation/storefront/txs"
)

// BroadcastResult is what a wallet reports after signing and broadcasting.
type BroadcastResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txhash"`
	RawLog  string `json:"raw_log,omitempty"`
}

// Wallet signs and broadcasts a transaction.
type Wallet interface {
	Address() string
	Post(ctx context.Context, tx *txs.SignableTransaction) (*BroadcastResult, error)
}

// Error is a wallet failure with a machine name, like UserDenied.
type Error struct {
	Name    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError new wallet error
func NewError(name, message string) *Error {
	return &Error{Name: name, Message: message}
}

// CancelPatterns lists lower case tokens that mark a user cancellation.
var CancelPatterns = struct {
	Names    []string
	Messages []string
}{
	Names: []string{"userdenied", "user_denied"},
	Messages: []string{
		"user denied",
		"user rejected",
		"user reject",
		"rejected by user",
		"denied",
		"cancelled",
		"canceled",
		"window closed",
		"closed",
		"aborted",
	},
}

// IsUserCancellation reports whether err means the user backed out.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var name string
	var werr *Error
	if errors.As(err, &werr) {
		name = strings.ToLower(werr.Name)
	}
	for _, token := range CancelPatterns.Names {
		if name != "" && strings.Contains(name, token) {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	for _, token := range CancelPatterns.Messages {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
