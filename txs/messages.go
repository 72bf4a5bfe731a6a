package txs

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/c2xstation/storefront/log"
)

var (
	errMissingAddress = errors.New("missing address")
	errBadContractMsg = errors.New("contract msg is neither json nor base64 json")

	// type identifier keys, in lookup order
	typeKeys = []string{"@type", "type", "typeUrl", "type_url"}

	bankSendTypes        = mapset.NewSet(TypeURLBankSend, strings.TrimPrefix(TypeURLBankSend, "/"))
	contractExecuteTypes = mapset.NewSet(TypeURLContractExecute, strings.TrimPrefix(TypeURLContractExecute, "/"))
)

func isBankSendType(typeURL string) bool {
	return bankSendTypes.Contains(typeURL)
}

func isContractExecuteType(typeURL string) bool {
	return contractExecuteTypes.Contains(typeURL)
}

// MessageType reads the type identifier of a json message object.
func MessageType(fields map[string]interface{}) string {
	for _, key := range typeKeys {
		if t, ok := fields[key].(string); ok && t != "" {
			return t
		}
	}
	return ""
}

// NormalizeMessages converts message descriptors into Message variants.
// Order and count are kept and it never fails: anything it cannot convert
// is passed through as Unknown.
func NormalizeMessages(in []interface{}) []Message {
	out := make([]Message, 0, len(in))
	for i, item := range in {
		out = append(out, normalizeMessage(i, item))
	}
	return out
}

func normalizeMessage(index int, item interface{}) Message {
	switch m := item.(type) {
	case Message:
		return m
	case map[string]interface{}:
		typeURL := MessageType(m)
		var (
			msg Message
			err error
		)
		switch {
		case isBankSendType(typeURL):
			msg, err = bankSendFromFields(m)
		case isContractExecuteType(typeURL):
			msg, err = contractExecuteFromFields(m)
		default:
			return &Unknown{Type: typeURL, Fields: m}
		}
		if err != nil {
			log.Warn("normalize message failed, pass through", "index", index, "type", typeURL, "err", err)
			return &Unknown{Type: typeURL, Fields: m}
		}
		return msg
	default:
		log.Warn("unexpected message descriptor, pass through", "index", index, "kind", typeName(item))
		raw, err := json.Marshal(item)
		if err != nil {
			raw = json.RawMessage("null")
		}
		return &Unknown{Raw: raw}
	}
}

func bankSendFromFields(m map[string]interface{}) (Message, error) {
	from := stringField(firstField(m, "from_address", "fromAddress"))
	to := stringField(firstField(m, "to_address", "toAddress"))
	if from == "" || to == "" {
		return nil, errMissingAddress
	}
	amount, err := coinsFromValue(m["amount"])
	if err != nil {
		return nil, err
	}
	return &BankSend{FromAddress: from, ToAddress: to, Amount: amount}, nil
}

func contractExecuteFromFields(m map[string]interface{}) (Message, error) {
	sender := stringField(m["sender"])
	contract := stringField(m["contract"])
	if sender == "" || contract == "" {
		return nil, errMissingAddress
	}
	msg, err := contractMsgFromValue(m["msg"])
	if err != nil {
		return nil, err
	}
	fundsIn := firstField(m, "funds", "coins")
	funds := []Coin{}
	if fundsIn != nil {
		if funds, err = coinsFromValue(fundsIn); err != nil {
			return nil, err
		}
	}
	return &ContractExecute{Sender: sender, Contract: contract, Msg: msg, Funds: funds}, nil
}

func contractMsgFromValue(v interface{}) (json.RawMessage, error) {
	switch msg := v.(type) {
	case nil:
		return nil, errBadContractMsg
	case string:
		if raw, err := base64.StdEncoding.DecodeString(msg); err == nil && json.Valid(raw) {
			return raw, nil
		}
		if json.Valid([]byte(msg)) {
			return json.RawMessage(msg), nil
		}
		return nil, errBadContractMsg
	default:
		return json.Marshal(msg)
	}
}

func firstField(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
