package params

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/c2xstation/storefront/log"
)

const (
	defaultGasLimit = 300000
	defaultGasPrice = "850000000000" + NativeDenom
	maxKeyFileSize  = 4096
)

// WalletConfig local signing key config
type WalletConfig struct {
	Address        string
	PrivateKeyFile string `json:"-"`
	GasLimit       uint64
	GasPrice       string

	privKey []byte
}

func (c *WalletConfig) String() string {
	return c.Address
}

// GetPrivateKey get private key bytes
func (c *WalletConfig) GetPrivateKey() []byte {
	return c.privKey
}

// CheckConfig check wallet config and load the key
func (c *WalletConfig) CheckConfig() error {
	if c.GasLimit == 0 {
		c.GasLimit = defaultGasLimit
	}
	if c.GasPrice == "" {
		c.GasPrice = defaultGasPrice
	}
	if c.PrivateKeyFile == "" {
		return nil
	}
	return c.LoadPrivateKey()
}

// LoadPrivateKey reads a hex encoded secp256k1 key from PrivateKeyFile
func (c *WalletConfig) LoadPrivateKey() error {
	content, err := safeReadFile(c.PrivateKeyFile)
	if err != nil {
		return fmt.Errorf("load wallet key failed: %w", err)
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(string(content)), "0x")
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return fmt.Errorf("wrong wallet key format: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("wrong wallet key length %v", len(key))
	}
	c.privKey = key
	log.Info("load wallet key success", "address", c.Address)
	return nil
}

func safeReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxKeyFileSize {
		return nil, errors.New("key file too large")
	}
	return os.ReadFile(path)
}
