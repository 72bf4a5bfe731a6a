package purchase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/c2xstation/storefront/lcd"
)

// Quote compares a price with the wallet balance before checkout.
type Quote struct {
	Symbol       string          `json:"symbol"`
	Have         decimal.Decimal `json:"have"`
	Pay          decimal.Decimal `json:"pay"`
	After        decimal.Decimal `json:"after"`
	Insufficient bool            `json:"insufficient"`
}

// NewQuote computes the balance left after paying.
func NewQuote(symbol string, have, pay decimal.Decimal) *Quote {
	return &Quote{
		Symbol:       symbol,
		Have:         have,
		Pay:          pay,
		After:        have.Sub(pay),
		Insufficient: pay.GreaterThan(have),
	}
}

// QuoteBalance quotes a display price such as "1,500" against balance.
func QuoteBalance(balance *lcd.Balance, price string) (*Quote, error) {
	pay, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(price), ",", ""))
	if err != nil {
		return nil, fmt.Errorf("wrong price %q: %w", price, err)
	}
	have := decimal.Zero
	symbol := ""
	if balance != nil {
		have = lcd.ToDisplay(balance.Amount, balance.Decimals)
		symbol = balance.Symbol
	}
	return NewQuote(symbol, have, pay), nil
}
