package wallet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	cosmosClient "github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	codecTypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptoCodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptoTypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	signingTypes "github.com/cosmos/cosmos-sdk/types/tx/signing"
	"github.com/cosmos/cosmos-sdk/x/auth/signing"
	authTx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	bankTypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/txs"
)

// XPLA address prefix
const (
	DefaultAccountPrefix = "xpla"
	DefaultGasLimit      = 300000

	codeTxInMempoolCache = 19
)

// key wallet errors
var (
	ErrUnsupportedMessage = errors.New("message type not supported by key wallet")
	ErrNoMessages         = errors.New("no messages to sign")
	ErrWrongPrivateKey    = errors.New("wrong private key")

	setPrefixOnce sync.Once
)

// NewClientContext builds the codec and tx config used to sign and encode
func NewClientContext() cosmosClient.Context {
	amino := codec.NewLegacyAmino()

	interfaceRegistry := codecTypes.NewInterfaceRegistry()
	cryptoCodec.RegisterInterfaces(interfaceRegistry)
	bankTypes.RegisterInterfaces(interfaceRegistry)
	txs.RegisterInterfaces(interfaceRegistry)

	protoCodec := codec.NewProtoCodec(interfaceRegistry)
	txConfig := authTx.NewTxConfig(protoCodec, authTx.DefaultSignModes)

	return cosmosClient.Context{}.
		WithCodec(protoCodec).
		WithInterfaceRegistry(interfaceRegistry).
		WithTxConfig(txConfig).
		WithLegacyAmino(amino)
}

// SetAccountPrefix sets the bech32 prefix used to parse signer addresses.
// Only the first call has effect.
func SetAccountPrefix(prefix string) {
	setPrefixOnce.Do(func() {
		config := sdk.GetConfig()
		config.SetBech32PrefixForAccount(prefix, prefix+sdk.PrefixPublic)
	})
}

// KeyWallet signs with a local secp256k1 key in SIGN_MODE_DIRECT and
// broadcasts through the LCD.
type KeyWallet struct {
	privKey  *secp256k1.PrivKey
	address  string
	lcd      *lcd.Client
	txConfig cosmosClient.TxConfig

	chainID  string
	gasLimit uint64
	gasPrice *sdk.DecCoin
}

// Option configures a KeyWallet
type Option func(*KeyWallet)

// WithChainID skips the chain id query
func WithChainID(chainID string) Option {
	return func(w *KeyWallet) { w.chainID = chainID }
}

// WithGasLimit gas limit used when the tx has no fee
func WithGasLimit(gasLimit uint64) Option {
	return func(w *KeyWallet) {
		if gasLimit > 0 {
			w.gasLimit = gasLimit
		}
	}
}

// WithGasPrice gas price like "850000000000axpla", used when the tx has no fee
func WithGasPrice(gasPrice string) Option {
	return func(w *KeyWallet) {
		if gasPrice == "" {
			return
		}
		price, err := sdk.ParseDecCoin(gasPrice)
		if err != nil {
			log.Warn("ignore wrong gas price", "gasPrice", gasPrice, "err", err)
			return
		}
		w.gasPrice = &price
	}
}

// NewKeyWallet new key wallet
func NewKeyWallet(key []byte, lcdClient *lcd.Client, opts ...Option) (*KeyWallet, error) {
	if len(key) != secp256k1.PrivKeySize {
		return nil, ErrWrongPrivateKey
	}
	SetAccountPrefix(DefaultAccountPrefix)
	privKey := &secp256k1.PrivKey{Key: key}
	address, err := sdk.Bech32ifyAddressBytes(sdk.GetConfig().GetBech32AccountAddrPrefix(), sdk.AccAddress(privKey.PubKey().Address()))
	if err != nil {
		return nil, err
	}
	w := &KeyWallet{
		privKey:  privKey,
		address:  address,
		lcd:      lcdClient,
		txConfig: NewClientContext().TxConfig,
		gasLimit: DefaultGasLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Address implements Wallet
func (w *KeyWallet) Address() string {
	return w.address
}

// Post implements Wallet
func (w *KeyWallet) Post(ctx context.Context, tx *txs.SignableTransaction) (*BroadcastResult, error) {
	txBytes, err := w.Sign(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	res, err := w.lcd.BroadcastTx(ctx, txBytes)
	if err != nil {
		return nil, err
	}
	code := int64(0)
	if res.Code != nil {
		code = *res.Code
	}
	log.Info("key wallet broadcast tx", "txHash", res.TxHash, "code", code)
	return &BroadcastResult{
		Success: code == 0 || code == codeTxInMempoolCache,
		TxHash:  res.TxHash,
		RawLog:  res.RawLog,
	}, nil
}

// Sign builds and signs tx, returning the encoded tx bytes
func (w *KeyWallet) Sign(ctx context.Context, tx *txs.SignableTransaction) ([]byte, error) {
	msgs, err := toSDKMsgs(tx.Messages)
	if err != nil {
		return nil, err
	}
	account, err := w.lcd.GetBaseAccount(ctx, w.address)
	if err != nil {
		return nil, fmt.Errorf("get account failed: %w", err)
	}
	accountNumber, sequence, err := account.Numbers()
	if err != nil {
		return nil, fmt.Errorf("wrong account numbers: %w", err)
	}
	chainID := w.chainID
	if chainID == "" {
		if chainID, err = w.lcd.GetChainID(ctx); err != nil {
			return nil, err
		}
	}

	txBuilder := w.txConfig.NewTxBuilder()
	if err = txBuilder.SetMsgs(msgs...); err != nil {
		return nil, err
	}
	txBuilder.SetMemo(tx.Memo)
	if err = w.setFee(txBuilder, tx.Fee); err != nil {
		return nil, err
	}

	pubKey := w.privKey.PubKey()
	sig := BuildSignatures(pubKey, sequence, nil)
	if err = txBuilder.SetSignatures(sig); err != nil {
		return nil, err
	}
	signerData := signing.SignerData{
		ChainID:       chainID,
		AccountNumber: accountNumber,
		Sequence:      sequence,
	}
	signBytes, err := w.txConfig.SignModeHandler().GetSignBytes(signingTypes.SignMode_SIGN_MODE_DIRECT, signerData, txBuilder.GetTx())
	if err != nil {
		return nil, err
	}
	signature, err := w.privKey.Sign(signBytes)
	if err != nil {
		return nil, err
	}
	if err = txBuilder.SetSignatures(BuildSignatures(pubKey, sequence, signature)); err != nil {
		return nil, err
	}
	if err = txBuilder.GetTx().ValidateBasic(); err != nil {
		return nil, err
	}
	return w.txConfig.TxEncoder()(txBuilder.GetTx())
}

func (w *KeyWallet) setFee(txBuilder cosmosClient.TxBuilder, fee *txs.Fee) error {
	if fee == nil {
		txBuilder.SetGasLimit(w.gasLimit)
		if w.gasPrice != nil {
			amount := w.gasPrice.Amount.MulInt64(int64(w.gasLimit)).Ceil().TruncateInt()
			txBuilder.SetFeeAmount(sdk.NewCoins(sdk.NewCoin(w.gasPrice.Denom, amount)))
		}
		return nil
	}
	amount, err := txs.ToSDKCoins(fee.Amount)
	if err != nil {
		return err
	}
	gasLimit, err := strconv.ParseUint(fee.GasLimit, 10, 64)
	if err != nil || gasLimit == 0 {
		gasLimit = w.gasLimit
	}
	txBuilder.SetFeeAmount(amount)
	txBuilder.SetGasLimit(gasLimit)
	return nil
}

// BuildSignatures builds a single direct mode signature
func BuildSignatures(publicKey cryptoTypes.PubKey, sequence uint64, signature []byte) signingTypes.SignatureV2 {
	return signingTypes.SignatureV2{
		PubKey: publicKey,
		Data: &signingTypes.SingleSignatureData{
			SignMode:  signingTypes.SignMode_SIGN_MODE_DIRECT,
			Signature: signature,
		},
		Sequence: sequence,
	}
}

func toSDKMsgs(messages []txs.Message) ([]sdk.Msg, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	msgs := make([]sdk.Msg, 0, len(messages))
	for _, m := range messages {
		switch msg := m.(type) {
		case *txs.BankSend:
			amount, err := txs.ToSDKCoins(msg.Amount)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, &bankTypes.MsgSend{
				FromAddress: msg.FromAddress,
				ToAddress:   msg.ToAddress,
				Amount:      amount,
			})
		case *txs.ContractExecute:
			funds, err := txs.ToSDKCoins(msg.Funds)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, &txs.MsgExecuteContract{
				Sender:   msg.Sender,
				Contract: msg.Contract,
				Msg:      []byte(msg.Msg),
				Funds:    funds,
			})
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedMessage, m.TypeURL())
		}
	}
	return msgs, nil
}
