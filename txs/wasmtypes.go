package txs

import (
	"errors"

	"github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gogo/protobuf/proto"
)

// MsgExecuteContract is cosmwasm.wasm.v1.MsgExecuteContract
type MsgExecuteContract struct {
	Sender   string `protobuf:"bytes,1,opt,name=sender,proto3" json:"sender,omitempty"`
	Contract string `protobuf:"bytes,2,opt,name=contract,proto3" json:"contract,omitempty"`
	// Msg json encoded message to be passed to the contract
	Msg   []byte     `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
	Funds []sdk.Coin `protobuf:"bytes,5,rep,name=funds,proto3" json:"funds"`
}

func init() {
	proto.RegisterType((*MsgExecuteContract)(nil), "cosmwasm.wasm.v1.MsgExecuteContract")
}

// RegisterInterfaces registers the hand written messages as sdk.Msg
func RegisterInterfaces(registry types.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil), &MsgExecuteContract{})
}

func (*MsgExecuteContract) ProtoMessage() {}

func (m *MsgExecuteContract) Reset() { *m = MsgExecuteContract{} }

func (m *MsgExecuteContract) String() string { return proto.CompactTextString(m) }

func (m MsgExecuteContract) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(m.Sender)
	return []sdk.AccAddress{sender}
}

func (m MsgExecuteContract) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(m.Sender); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(m.Contract); err != nil {
		return err
	}
	if len(m.Msg) == 0 {
		return errors.New("empty contract msg")
	}
	if !sdk.Coins(m.Funds).IsValid() && len(m.Funds) > 0 {
		return errors.New("invalid funds")
	}
	return nil
}
