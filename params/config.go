package params

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/c2xstation/storefront/common"
	"github.com/c2xstation/storefront/log"
)

// storefront constants
const (
	StorefrontPrefixID = "storefront"

	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	SessionBackendMemory  = "memory"
	SessionBackendLevelDB = "leveldb"
	SessionBackendRedis   = "redis"

	DefaultAPIOrigin    = "https://gw-test-gcl.c2xstation.net:9091"
	DefaultLCD          = "https://cube-lcd.xpla.dev"
	DefaultExplorerBase = "https://explorer.xpla.io"
	DefaultHiveURL      = "https://weblogin.withhive.com/login?param="
	DefaultGameID       = 3

	DefaultConfirmTimeoutMs  = 20000
	DefaultConfirmIntervalMs = 1200

	NativeDenom = "axpla"
	USDCDenom   = "ibc/8D450B77BD87010DDBF3B67F29961D7302709DFF83E18A4C96A11FD7F3B96F68"

	// environment overrides, also read from .env
	EnvAPIOrigin = "STOREFRONT_API_ORIGIN"
	EnvLCD       = "STOREFRONT_LCD"
	EnvNetwork   = "STOREFRONT_NETWORK"
)

var (
	storeConfig = NewDefaultConfig()
	configLock  sync.RWMutex
	locDataDir  string
)

// StoreConfig config
type StoreConfig struct {
	Identifier    string `validate:"required"`
	DefaultGameID int    `validate:"gte=0"`

	API     *APIConfig       `validate:"required"`
	Chain   *ChainConfig     `validate:"required"`
	Confirm *ConfirmConfig   `validate:"required"`
	Session *SessionConfig   `validate:"required"`
	Login   *LoginConfig     `validate:"required"`
	Wallet  *WalletConfig    `toml:",omitempty" json:",omitempty"`
	Server  *APIServerConfig `toml:",omitempty" json:",omitempty"`
}

// APIConfig backend api config
type APIConfig struct {
	Origin  string `validate:"required,url"`
	Timeout int    `validate:"gte=0"` // seconds
}

// ChainConfig xpla chain config
type ChainConfig struct {
	Network      string   `validate:"oneof=mainnet testnet"`
	ChainID      string   `toml:",omitempty" json:",omitempty"`
	LCD          []string `validate:"dive,url"`
	ExplorerBase string   `validate:"omitempty,url"`

	Denoms   map[string]string `toml:",omitempty" json:",omitempty"` // symbol -> denom
	Decimals map[string]int32  `toml:",omitempty" json:",omitempty"` // denom -> decimals
}

// ConfirmConfig confirmation polling config
type ConfirmConfig struct {
	TimeoutMs  int64 `validate:"gt=0"`
	IntervalMs int64 `validate:"gt=0"`
}

// SessionConfig session repository config
type SessionConfig struct {
	Backend       string `validate:"oneof=memory leveldb redis"`
	DataDir       string `toml:",omitempty" json:",omitempty"`
	RedisAddr     string `toml:",omitempty" json:",omitempty"`
	RedisPassword string `toml:",omitempty" json:"-"`
	RedisDB       int    `toml:",omitempty" json:",omitempty"`
	TTLSeconds    int64  `validate:"gte=0"`
}

// LoginConfig hive login config
type LoginConfig struct {
	RedirectBase string `validate:"omitempty,url"`
	HiveURL      string `validate:"omitempty,url"`
	Country      string
	Language     string
}

// APIServerConfig api server config
type APIServerConfig struct {
	Port             int      `validate:"gte=0,lte=65535"`
	AllowedOrigins   []string `toml:",omitempty" json:",omitempty"`
	MaxRequestsLimit int      `toml:",omitempty" json:",omitempty"`
	EnableMetrics    bool
}

// NewDefaultConfig returns the config used when no file is given.
func NewDefaultConfig() *StoreConfig {
	return &StoreConfig{
		Identifier:    StorefrontPrefixID,
		DefaultGameID: DefaultGameID,
		API: &APIConfig{
			Origin:  DefaultAPIOrigin,
			Timeout: 30,
		},
		Chain: &ChainConfig{
			Network:      NetworkTestnet,
			LCD:          []string{DefaultLCD},
			ExplorerBase: DefaultExplorerBase,
			Denoms: map[string]string{
				"XPLA":    NativeDenom,
				"axlUSDC": USDCDenom,
			},
			Decimals: map[string]int32{
				NativeDenom: 18,
				USDCDenom:   6,
			},
		},
		Confirm: &ConfirmConfig{
			TimeoutMs:  DefaultConfirmTimeoutMs,
			IntervalMs: DefaultConfirmIntervalMs,
		},
		Session: &SessionConfig{
			Backend:    SessionBackendMemory,
			TTLSeconds: 7 * 24 * 3600,
		},
		Login: &LoginConfig{
			HiveURL:  DefaultHiveURL,
			Country:  "US",
			Language: "en",
		},
	}
}

// GetConfig get config items structure
func GetConfig() *StoreConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	return storeConfig
}

// SetConfig replaces the active config
func SetConfig(config *StoreConfig) {
	configLock.Lock()
	defer configLock.Unlock()
	storeConfig = config
}

// GetIdentifier get identifier
func GetIdentifier() string {
	return GetConfig().Identifier
}

// GetDecimals returns the display decimals of denom, 0 if unknown
func GetDecimals(denom string) int32 {
	return GetConfig().Chain.Decimals[denom]
}

// ConfirmTimeout polling budget
func (c *ConfirmConfig) ConfirmTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ConfirmInterval polling interval
func (c *ConfirmConfig) ConfirmInterval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// ExplorerTxURL returns the explorer page of a tx hash
func (c *ChainConfig) ExplorerTxURL(txHash string) string {
	base := strings.TrimSuffix(c.ExplorerBase, "/")
	if base == "" {
		base = DefaultExplorerBase
	}
	network := NetworkTestnet
	if c.Network == NetworkMainnet {
		network = NetworkMainnet
	}
	return base + "/" + network + "/tx/" + txHash
}

// LoadConfig load config from file, nil config file means defaults
func LoadConfig(configFile string) *StoreConfig {
	config, err := ReadConfig(configFile)
	if err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	var bs []byte
	if log.JSONFormat {
		bs, _ = json.Marshal(config)
	} else {
		bs, _ = json.MarshalIndent(config, "", "  ")
	}
	log.Println("LoadConfig finished.", string(bs))

	if err := config.CheckConfig(); err != nil {
		log.Fatalf("Check config failed. %v", err)
	}
	SetConfig(config)
	return config
}

// ReadConfig decodes configFile over the defaults and applies env overrides
func ReadConfig(configFile string) (*StoreConfig, error) {
	config := NewDefaultConfig()
	if configFile != "" {
		log.Info("load config file", "configFile", configFile)
		if !common.FileExist(configFile) {
			return nil, errConfigFileNotExist(configFile)
		}
		if _, err := toml.DecodeFile(configFile, config); err != nil {
			return nil, errDecodeConfig(err)
		}
	}
	loadDotEnv()
	config.applyEnv()
	return config, nil
}

func loadDotEnv() {
	if !common.FileExist(".env") {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Warn("load .env file failed", "err", err)
	}
}

func (c *StoreConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIOrigin)); v != "" {
		c.API.Origin = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLCD)); v != "" {
		c.Chain.LCD = splitStringByBlankOrComma(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvNetwork)); v != "" {
		c.Chain.Network = strings.ToLower(v)
	}
}

// SetDataDir set data dir
func SetDataDir(dir string) {
	if dir == "" {
		return
	}
	currDir, err := common.CurrentDir()
	if err != nil {
		log.Fatal("get current dir failed", "err", err)
	}
	locDataDir = common.AbsolutePath(currDir, dir)
	log.Info("set data dir success", "datadir", locDataDir)
}

// GetDataDir get data dir
func GetDataDir() string {
	return locDataDir
}
