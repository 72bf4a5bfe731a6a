package txs

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/gogo/protobuf/proto"

	"github.com/c2xstation/storefront/log"
)

// strategy names
const (
	StrategyJSONDocument = "json-document"
	StrategyBinary       = "binary"
	StrategyPlainJSON    = "plain-json"
)

// Strategy tries to read a payload. It returns nil when the payload is not
// in its encoding and must never panic.
type Strategy struct {
	Name   string
	Decode func(raw []byte) (*Decoded, error)
}

// DefaultStrategies is the fixed decoding order.
var DefaultStrategies = []Strategy{
	{Name: StrategyJSONDocument, Decode: decodeJSONDocument},
	{Name: StrategyBinary, Decode: decodeBinary},
	{Name: StrategyPlainJSON, Decode: decodePlainJSON},
}

// Decode decodes a base64 unsigned transaction payload with DefaultStrategies.
// It returns nil when no strategy understands the payload.
func Decode(payload string) *Decoded {
	return DecodeWith(DefaultStrategies, payload)
}

// DecodeWith returns the result of the first strategy that succeeds.
func DecodeWith(strategies []Strategy, payload string) *Decoded {
	raw, err := decodeBase64(payload)
	if err != nil {
		log.Debug("decode unsigned tx base64 failed", "err", err)
		return nil
	}
	for _, s := range strategies {
		decoded, err := runStrategy(s, raw)
		if err != nil {
			log.Debug("decode unsigned tx strategy failed", "strategy", s.Name, "err", err)
			continue
		}
		if decoded != nil {
			decoded.Strategy = s.Name
			log.Debug("decode unsigned tx success", "strategy", s.Name, "messages", len(decoded.Messages))
			return decoded
		}
	}
	return nil
}

func runStrategy(s Strategy, raw []byte) (decoded *Decoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			decoded, err = nil, fmt.Errorf("strategy panic: %v", r)
		}
	}()
	return s.Decode(raw)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(payload); err == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("payload is not base64")
}

func unmarshalObject(raw []byte) (map[string]interface{}, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("payload is not utf-8")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeJSONDocument reads {body:{messages,memo}, auth_info:{fee}}
func decodeJSONDocument(raw []byte) (*Decoded, error) {
	doc, err := unmarshalObject(raw)
	if err != nil {
		return nil, err
	}
	body, ok := doc["body"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	decoded := &Decoded{
		Messages: toSlice(body["messages"]),
		Memo:     stringField(body["memo"]),
	}
	if authInfo, ok := doc["auth_info"].(map[string]interface{}); ok {
		if feeIn, ok := authInfo["fee"].(map[string]interface{}); ok && hasFeeAmount(feeIn["amount"]) {
			if fee, err := feeFromObject(feeIn); err == nil {
				decoded.Fee = fee
			} else {
				log.Debug("build fee from tx document failed, keep raw fee", "err", err)
				decoded.Fee = feeIn
			}
		}
	}
	return decoded, nil
}

func hasFeeAmount(amount interface{}) bool {
	switch v := amount.(type) {
	case nil:
		return false
	case []interface{}:
		return len(v) > 0
	case string:
		return v != ""
	default:
		return true
	}
}

// decodeBinary reads a protobuf cosmos.tx.v1beta1.Tx
func decodeBinary(raw []byte) (*Decoded, error) {
	var tx txtypes.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	if tx.Body == nil {
		return nil, nil
	}
	decoded := &Decoded{
		Messages: make([]interface{}, 0, len(tx.Body.Messages)),
		Memo:     tx.Body.Memo,
	}
	for _, msgAny := range tx.Body.Messages {
		if msgAny == nil {
			continue
		}
		decoded.Messages = append(decoded.Messages, messageFromAny(msgAny.TypeUrl, msgAny.Value))
	}
	if tx.AuthInfo != nil && tx.AuthInfo.Fee != nil {
		decoded.Fee = &Fee{
			GasLimit: strconv.FormatUint(tx.AuthInfo.Fee.GasLimit, 10),
			Amount:   coinsFromSDK(tx.AuthInfo.Fee.Amount),
		}
	}
	return decoded, nil
}

func messageFromAny(typeURL string, value []byte) Message {
	unknown := func() Message {
		return &Unknown{
			Type: typeURL,
			Fields: map[string]interface{}{
				"@type": typeURL,
				"value": base64.StdEncoding.EncodeToString(value),
			},
		}
	}
	switch {
	case isBankSendType(typeURL):
		var msg banktypes.MsgSend
		if err := msg.Unmarshal(value); err != nil {
			log.Debug("unmarshal bank send failed", "err", err)
			return unknown()
		}
		return &BankSend{
			FromAddress: msg.FromAddress,
			ToAddress:   msg.ToAddress,
			Amount:      coinsFromSDK(msg.Amount),
		}
	case isContractExecuteType(typeURL):
		var msg MsgExecuteContract
		if err := proto.Unmarshal(value, &msg); err != nil {
			log.Debug("unmarshal contract execute failed", "err", err)
			return unknown()
		}
		return &ContractExecute{
			Sender:   msg.Sender,
			Contract: msg.Contract,
			Msg:      contractMsgJSON(msg.Msg),
			Funds:    coinsFromSDK(msg.Funds),
		}
	default:
		return unknown()
	}
}

// decodePlainJSON reads a signable options object {msgs|messages, memo, fee}
func decodePlainJSON(raw []byte) (*Decoded, error) {
	obj, err := unmarshalObject(raw)
	if err != nil {
		return nil, err
	}
	msgs, hasMsgs := obj["msgs"]
	if !hasMsgs {
		msgs, hasMsgs = obj["messages"]
	}
	fee, hasFee := obj["fee"]
	if !hasMsgs && !hasFee {
		return nil, nil
	}
	return &Decoded{
		Messages: toSlice(msgs),
		Memo:     stringField(obj["memo"]),
		Fee:      fee,
	}, nil
}

func toSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return []interface{}{}
}

func stringField(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// contractMsgJSON keeps json messages as is and quotes anything else.
func contractMsgJSON(msg []byte) json.RawMessage {
	if json.Valid(msg) {
		return json.RawMessage(msg)
	}
	quoted, _ := json.Marshal(base64.StdEncoding.EncodeToString(msg))
	return quoted
}
