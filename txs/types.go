// Package txs turns a server issued unsigned transaction payload into a
// transaction a wallet can sign.
package txs

import (
	"encoding/json"
)

// message type urls
const (
	TypeURLBankSend        = "/cosmos.bank.v1beta1.MsgSend"
	TypeURLContractExecute = "/cosmwasm.wasm.v1.MsgExecuteContract"
)

// Coin is a denom and an integer amount in base units.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Fee is the canonical fee form.
type Fee struct {
	GasLimit string `json:"gas_limit"`
	Amount   []Coin `json:"amount"`
}

// Message is one of BankSend, ContractExecute or Unknown.
type Message interface {
	TypeURL() string
	isMessage()
}

// BankSend transfers coins between accounts.
type BankSend struct {
	FromAddress string
	ToAddress   string
	Amount      []Coin
}

// ContractExecute invokes a wasm contract. Msg is the contract call as json.
type ContractExecute struct {
	Sender   string
	Contract string
	Msg      json.RawMessage
	Funds    []Coin
}

// Unknown is passed to the wallet verbatim. Raw holds a descriptor that is
// not a json object.
type Unknown struct {
	Type   string
	Fields map[string]interface{}
	Raw    json.RawMessage
}

// TypeURL implements Message
func (*BankSend) TypeURL() string { return TypeURLBankSend }

// TypeURL implements Message
func (*ContractExecute) TypeURL() string { return TypeURLContractExecute }

// TypeURL implements Message
func (m *Unknown) TypeURL() string { return m.Type }

func (*BankSend) isMessage()        {}
func (*ContractExecute) isMessage() {}
func (*Unknown) isMessage()         {}

// MarshalJSON encodes the amino json style data form.
func (m *BankSend) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string `json:"@type"`
		FromAddress string `json:"from_address"`
		ToAddress   string `json:"to_address"`
		Amount      []Coin `json:"amount"`
	}{m.TypeURL(), m.FromAddress, m.ToAddress, nonNilCoins(m.Amount)})
}

// MarshalJSON encodes the amino json style data form.
func (m *ContractExecute) MarshalJSON() ([]byte, error) {
	msg := m.Msg
	if len(msg) == 0 {
		msg = json.RawMessage("{}")
	}
	return json.Marshal(struct {
		Type     string          `json:"@type"`
		Sender   string          `json:"sender"`
		Contract string          `json:"contract"`
		Msg      json.RawMessage `json:"msg"`
		Funds    []Coin          `json:"funds"`
	}{m.TypeURL(), m.Sender, m.Contract, msg, nonNilCoins(m.Funds)})
}

// MarshalJSON encodes the original fields.
func (m *Unknown) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	if m.Fields == nil {
		return json.Marshal(map[string]interface{}{"@type": m.Type})
	}
	return json.Marshal(m.Fields)
}

func nonNilCoins(coins []Coin) []Coin {
	if coins == nil {
		return []Coin{}
	}
	return coins
}

// SignableTransaction is what a wallet receives.
type SignableTransaction struct {
	Messages []Message `json:"msgs"`
	Memo     string    `json:"memo"`
	Fee      *Fee      `json:"fee,omitempty"`
}

// Decoded is the raw result of a decoding strategy. Messages hold either
// json objects or Message values, Fee is nil, a *Fee or a raw json object.
type Decoded struct {
	Strategy string
	Messages []interface{}
	Memo     string
	Fee      interface{}
}

// BuildSignable normalizes a decoded payload.
func BuildSignable(decoded *Decoded) *SignableTransaction {
	return &SignableTransaction{
		Messages: NormalizeMessages(decoded.Messages),
		Memo:     decoded.Memo,
		Fee:      NormalizeFee(decoded.Fee),
	}
}
