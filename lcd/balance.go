package lcd

import (
	"github.com/shopspring/decimal"
)

// Balance is a coin with its display amount
type Balance struct {
	Symbol   string `json:"symbol,omitempty"`
	Denom    string `json:"denom"`
	Amount   string `json:"amount"`
	Decimals int32  `json:"decimals"`
	Display  string `json:"display"`
}

// ToDisplay shifts a base unit amount by decimals. Bad input reads as zero.
func ToDisplay(amount string, decimals int32) decimal.Decimal {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-decimals)
}

// NewBalance builds a display balance
func NewBalance(symbol, denom, amount string, decimals int32) *Balance {
	if amount == "" {
		amount = "0"
	}
	return &Balance{
		Symbol:   symbol,
		Denom:    denom,
		Amount:   amount,
		Decimals: decimals,
		Display:  ToDisplay(amount, decimals).String(),
	}
}
