package txs

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeKeys(t *testing.T) {
	cases := []struct {
		Fields   map[string]interface{}
		Expected string
	}{
		{map[string]interface{}{"@type": "/a.B"}, "/a.B"},
		{map[string]interface{}{"type": "a.B"}, "a.B"},
		{map[string]interface{}{"typeUrl": "/a.C"}, "/a.C"},
		{map[string]interface{}{"type_url": "/a.D"}, "/a.D"},
		{map[string]interface{}{"@type": "", "type": "a.E"}, "a.E"},
		{map[string]interface{}{"value": 1}, ""},
	}
	for _, c := range cases {
		if got := MessageType(c.Fields); got != c.Expected {
			t.Fatalf("%v expected %v, but %v got", c.Fields, c.Expected, got)
		}
	}
}

func TestNormalizeMessagesPreservesOrderAndCount(t *testing.T) {
	already := &BankSend{FromAddress: "xpla1a", ToAddress: "xpla1b", Amount: []Coin{{Denom: "axpla", Amount: "1"}}}
	unknownFields := map[string]interface{}{"@type": "/xpla.evm.v1.MsgEthereumTx", "data": "0x00"}
	in := []interface{}{
		map[string]interface{}{
			"@type":    "cosmwasm.wasm.v1.MsgExecuteContract",
			"sender":   "xpla1a",
			"contract": "xpla1c",
			"msg":      map[string]interface{}{"buy": map[string]interface{}{"code": "RUBY10"}},
			"funds":    []interface{}{map[string]interface{}{"denom": "axpla", "amount": "3"}},
		},
		unknownFields,
		already,
		map[string]interface{}{
			"typeUrl":     "/cosmos.bank.v1beta1.MsgSend",
			"fromAddress": "xpla1a",
			"toAddress":   "xpla1b",
			"amount":      []interface{}{map[string]interface{}{"denom": "axpla", "amount": json.Number("9")}},
		},
	}

	out := NormalizeMessages(in)
	require.Len(t, out, len(in))

	exec, ok := out[0].(*ContractExecute)
	require.True(t, ok, "got %T", out[0])
	require.JSONEq(t, `{"buy":{"code":"RUBY10"}}`, string(exec.Msg))
	require.Equal(t, []Coin{{Denom: "axpla", Amount: "3"}}, exec.Funds)

	unknown, ok := out[1].(*Unknown)
	require.True(t, ok, "got %T", out[1])
	if diff := cmp.Diff(unknownFields, unknown.Fields); diff != "" {
		t.Fatalf("unknown fields changed (-want +got):\n%s", diff)
	}

	require.Same(t, already, out[2])

	send, ok := out[3].(*BankSend)
	require.True(t, ok, "got %T", out[3])
	require.Equal(t, []Coin{{Denom: "axpla", Amount: "9"}}, send.Amount)
}

func TestNormalizeKnownTypeWithBadFieldsPassesThrough(t *testing.T) {
	cases := []map[string]interface{}{
		{"@type": TypeURLBankSend, "from_address": "xpla1a"},
		{"@type": TypeURLBankSend, "from_address": "xpla1a", "to_address": "xpla1b", "amount": []interface{}{map[string]interface{}{"denom": "axpla", "amount": "-1"}}},
		{"@type": TypeURLContractExecute, "sender": "xpla1a", "contract": "xpla1c", "msg": "not json"},
	}
	for _, fields := range cases {
		out := NormalizeMessages([]interface{}{fields})
		unknown, ok := out[0].(*Unknown)
		require.True(t, ok, "got %T", out[0])
		require.Equal(t, fields, unknown.Fields)
	}
}

func TestNonObjectDescriptorKeepsWireForm(t *testing.T) {
	cases := []struct {
		In   interface{}
		JSON string
	}{
		{"opaque", `"opaque"`},
		{json.Number("42"), `42`},
		{[]interface{}{"a", true}, `["a",true]`},
		{nil, `null`},
	}
	for _, tc := range cases {
		out := NormalizeMessages([]interface{}{tc.In})
		unknown, ok := out[0].(*Unknown)
		require.True(t, ok, "got %T", out[0])
		require.Equal(t, "", unknown.TypeURL())
		require.Nil(t, unknown.Fields)
		bz, err := json.Marshal(unknown)
		require.NoError(t, err)
		require.JSONEq(t, tc.JSON, string(bz))
	}
}

func TestContractMsgAsBase64(t *testing.T) {
	out := NormalizeMessages([]interface{}{map[string]interface{}{
		"@type":    TypeURLContractExecute,
		"sender":   "xpla1a",
		"contract": "xpla1c",
		"msg":      b64(`{"buy":{}}`),
	}})
	exec, ok := out[0].(*ContractExecute)
	require.True(t, ok, "got %T", out[0])
	require.JSONEq(t, `{"buy":{}}`, string(exec.Msg))
	require.Empty(t, exec.Funds)
}

func TestMessageJSONForm(t *testing.T) {
	bz, err := json.Marshal(&SignableTransaction{
		Messages: []Message{
			&BankSend{FromAddress: "xpla1a", ToAddress: "xpla1b"},
			&Unknown{Type: "/x.Y", Fields: map[string]interface{}{"@type": "/x.Y", "k": "v"}},
		},
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"msgs": [
			{"@type": "/cosmos.bank.v1beta1.MsgSend", "from_address": "xpla1a", "to_address": "xpla1b", "amount": []},
			{"@type": "/x.Y", "k": "v"}
		],
		"memo": ""
	}`, string(bz))
}

func TestBuildSignableEndToEnd(t *testing.T) {
	decoded := Decode(b64(jsonDocumentTx))
	require.NotNil(t, decoded)
	tx := BuildSignable(decoded)
	require.Len(t, tx.Messages, 1)
	_, ok := tx.Messages[0].(*BankSend)
	require.True(t, ok)
	require.Equal(t, "200000", tx.Fee.GasLimit)
	require.Equal(t, "RUBY10", tx.Memo)
}
