package purchase

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c2xstation/storefront/lcd"
)

func TestQuoteBalance(t *testing.T) {
	balance := lcd.NewBalance("axlUSDC", "ibc/usdc", "2500000", 6)

	cases := []struct {
		Price        string
		After        string
		Insufficient bool
	}{
		{"1.5", "1", false},
		{"2.5", "0", false},
		{"1,000", "-997.5", true},
	}
	for _, tc := range cases {
		q, err := QuoteBalance(balance, tc.Price)
		require.NoError(t, err, tc.Price)
		assert.Equal(t, "axlUSDC", q.Symbol)
		assert.True(t, q.Have.Equal(decimal.RequireFromString("2.5")), tc.Price)
		assert.Equal(t, tc.After, q.After.String(), tc.Price)
		assert.Equal(t, tc.Insufficient, q.Insufficient, tc.Price)
	}

	q, err := QuoteBalance(nil, "1")
	require.NoError(t, err)
	assert.True(t, q.Insufficient)

	_, err = QuoteBalance(balance, "free")
	require.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, MsgPaymentFailed, UserMessage(errors.New("boom")))
	assert.Equal(t, MsgMissingHash, UserMessage(newError(ReasonMissingHash, MsgMissingHash, ErrNoTxHash)))
	assert.Empty(t, UserMessage(newError(ReasonCancelledByUser, "", ErrCancelledByUser)))
	assert.Equal(t, ReasonMissingHash, ReasonOf(newError(ReasonMissingHash, MsgMissingHash, nil)))
	assert.Equal(t, Reason(""), ReasonOf(errors.New("x")))
	assert.Equal(t, "confirmingOnChain", ConfirmingOnChain.String())
}
