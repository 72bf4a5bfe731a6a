package txs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/c2xstation/storefront/log"
)

const defaultGasLimit = "0"

// fee errors
var (
	ErrUnsupportedFee    = errors.New("unsupported fee amount")
	ErrWrongCoin         = errors.New("wrong coin")
	ErrWrongGasLimit     = errors.New("wrong gas limit")
	ErrMissingFeeAmount  = errors.New("missing fee amount")
	errUnsupportedCoinIn = errors.New("unsupported coins value")
)

// NormalizeFee converts a decoded fee into a Fee. It returns nil when there
// is no fee or it cannot be converted, the wallet then picks the fee itself.
func NormalizeFee(feeIn interface{}) *Fee {
	switch fee := feeIn.(type) {
	case nil:
		return nil
	case *Fee:
		return fee
	case Fee:
		return &fee
	case map[string]interface{}:
		res, err := feeFromObject(fee)
		if err != nil {
			log.Warn("normalize fee failed", "err", err)
			return nil
		}
		return res
	default:
		log.Warn("normalize fee failed", "err", ErrUnsupportedFee, "kind", typeName(feeIn))
		return nil
	}
}

func feeFromObject(feeIn map[string]interface{}) (*Fee, error) {
	gas, err := gasLimitFromValue(firstGas(feeIn))
	if err != nil {
		return nil, err
	}
	var amount []Coin
	switch v := feeIn["amount"].(type) {
	case nil:
		return nil, ErrMissingFeeAmount
	case []interface{}:
		amount, err = coinsFromValue(v)
	case string:
		amount, err = parseCoinsString(v)
	case map[string]interface{}:
		var coin Coin
		if coin, err = coinFromValue(v); err == nil {
			amount = []Coin{coin}
		}
	case fmt.Stringer:
		amount, err = parseCoinsString(v.String())
	default:
		err = ErrUnsupportedFee
	}
	if err != nil {
		return nil, err
	}
	return &Fee{GasLimit: gas, Amount: amount}, nil
}

// firstGas mirrors `gas_limit || gas`: zero and empty values fall through.
func firstGas(feeIn map[string]interface{}) interface{} {
	for _, key := range []string{"gas_limit", "gas"} {
		v := feeIn[key]
		if v == nil || v == "" {
			continue
		}
		if n, ok := v.(json.Number); ok && n.String() == "0" {
			continue
		}
		if f, ok := v.(float64); ok && f == 0 {
			continue
		}
		return v
	}
	return nil
}

func gasLimitFromValue(v interface{}) (string, error) {
	var gas string
	switch g := v.(type) {
	case nil:
		return defaultGasLimit, nil
	case string:
		gas = strings.TrimSpace(g)
	case json.Number:
		gas = g.String()
	case float64:
		gas = strconv.FormatFloat(g, 'f', -1, 64)
	case int:
		gas = strconv.Itoa(g)
	case int64:
		gas = strconv.FormatInt(g, 10)
	case uint64:
		gas = strconv.FormatUint(g, 10)
	default:
		return "", fmt.Errorf("%w: %v", ErrWrongGasLimit, v)
	}
	if _, err := strconv.ParseUint(gas, 10, 64); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrongGasLimit, gas)
	}
	return gas, nil
}

func parseCoinsString(s string) ([]Coin, error) {
	coins, err := sdk.ParseCoinsNormalized(s)
	if err != nil {
		return nil, err
	}
	return coinsFromSDK(coins), nil
}

func coinsFromValue(v interface{}) ([]Coin, error) {
	items, ok := v.([]interface{})
	if !ok {
		if s, isStr := v.(string); isStr {
			return parseCoinsString(s)
		}
		return nil, errUnsupportedCoinIn
	}
	coins := make([]Coin, 0, len(items))
	for _, item := range items {
		coin, err := coinFromValue(item)
		if err != nil {
			return nil, err
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

func coinFromValue(v interface{}) (Coin, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Coin{}, fmt.Errorf("%w: %v", ErrWrongCoin, v)
	}
	coin := Coin{
		Denom:  strings.TrimSpace(stringField(m["denom"])),
		Amount: strings.TrimSpace(stringField(m["amount"])),
	}
	if err := coin.Validate(); err != nil {
		return Coin{}, err
	}
	return coin, nil
}

// Validate checks denom and integer amount.
func (c Coin) Validate() error {
	if err := sdk.ValidateDenom(c.Denom); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongCoin, err)
	}
	amount, ok := sdk.NewIntFromString(c.Amount)
	if !ok || amount.IsNegative() {
		return fmt.Errorf("%w: amount '%v'", ErrWrongCoin, c.Amount)
	}
	return nil
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

func coinsFromSDK(coins sdk.Coins) []Coin {
	res := make([]Coin, 0, len(coins))
	for _, c := range coins {
		res = append(res, Coin{Denom: c.Denom, Amount: c.Amount.String()})
	}
	return res
}

// ToSDKCoins converts coins into sorted sdk coins.
func ToSDKCoins(coins []Coin) (sdk.Coins, error) {
	res := make(sdk.Coins, 0, len(coins))
	for _, c := range coins {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		amount, _ := sdk.NewIntFromString(c.Amount)
		res = append(res, sdk.NewCoin(c.Denom, amount))
	}
	return res.Sort(), nil
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
