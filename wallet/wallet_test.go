package wallet

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsUserCancellation(t *testing.T) {
	cases := []struct {
		Err      error
		Expected bool
	}{
		{nil, false},
		{NewError("UserDenied", ""), true},
		{NewError("USER_DENIED", "whatever"), true},
		{errors.New("User Rejected the request"), true},
		{errors.New("Request rejected by user"), true},
		{errors.New("popup window CLOSED"), true},
		{errors.New("signing Aborted"), true},
		{errors.New("operation canceled"), true},
		{fmt.Errorf("post: %w", context.Canceled), true},
		{NewError("TxFailed", "insufficient funds"), false},
		{errors.New("insufficient funds: 10axpla is smaller than 20axpla"), false},
		{errors.New("connection reset by peer"), false},
	}
	for _, c := range cases {
		if got := IsUserCancellation(c.Err); got != c.Expected {
			t.Fatalf("%v expected %v, but %v got", c.Err, c.Expected, got)
		}
	}
}

func TestErrorText(t *testing.T) {
	cases := []struct {
		Err      *Error
		Expected string
	}{
		{NewError("UserDenied", ""), "UserDenied"},
		{NewError("", "closed"), "closed"},
		{NewError("TxFailed", "out of gas"), "TxFailed: out of gas"},
	}
	for _, c := range cases {
		if got := c.Err.Error(); got != c.Expected {
			t.Fatalf("expected %v, but %v got", c.Expected, got)
		}
	}
}
