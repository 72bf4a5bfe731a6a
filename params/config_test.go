package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigPassesCheck(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.CheckConfig())
	require.Equal(t, DefaultGameID, config.DefaultGameID)
	require.Equal(t, int32(18), config.Chain.Decimals[NativeDenom])
}

func TestReadConfigOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.toml", `
Identifier = "storefront-test"

[API]
Origin = "https://api.example.com"

[Chain]
Network = "mainnet"
LCD = ["https://lcd.example.com/"]

[Confirm]
TimeoutMs = 5000
IntervalMs = 500
`)
	config, err := ReadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.CheckConfig())

	require.Equal(t, "https://api.example.com", config.API.Origin)
	require.Equal(t, []string{"https://lcd.example.com"}, config.Chain.LCD)
	require.Equal(t, int64(500), config.Confirm.IntervalMs)
	// untouched sections keep defaults
	require.Equal(t, SessionBackendMemory, config.Session.Backend)
	require.Equal(t, "https://explorer.xpla.io/mainnet/tx/ABC", config.Chain.ExplorerTxURL("ABC"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLCD, "https://a.example.com, https://b.example.com")
	t.Setenv(EnvNetwork, "MAINNET")

	config, err := ReadConfig("")
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.Chain.LCD)
	require.Equal(t, NetworkMainnet, config.Chain.Network)
}

func TestCheckConfigErrors(t *testing.T) {
	cases := []struct {
		Name   string
		Modify func(c *StoreConfig)
	}{
		{"identifier", func(c *StoreConfig) { c.Identifier = "router" }},
		{"network", func(c *StoreConfig) { c.Chain.Network = "devnet" }},
		{"interval", func(c *StoreConfig) { c.Confirm.IntervalMs = c.Confirm.TimeoutMs + 1 }},
		{"backend", func(c *StoreConfig) { c.Session.Backend = "mongo" }},
		{"redis", func(c *StoreConfig) { c.Session.Backend = SessionBackendRedis }},
		{"origin", func(c *StoreConfig) { c.API.Origin = "not a url" }},
	}
	for _, tc := range cases {
		config := NewDefaultConfig()
		tc.Modify(config)
		if err := config.CheckConfig(); err == nil {
			t.Fatalf("%v: expected check error", tc.Name)
		}
	}
}

func TestWalletKeyFile(t *testing.T) {
	key := "0x" + "11223344556677881122334455667788" + "11223344556677881122334455667788"
	wallet := &WalletConfig{PrivateKeyFile: writeFile(t, "key", key+"\n")}
	require.NoError(t, wallet.CheckConfig())
	require.Len(t, wallet.GetPrivateKey(), 32)
	require.Equal(t, "850000000000axpla", wallet.GasPrice)

	bad := &WalletConfig{PrivateKeyFile: writeFile(t, "bad", "abcd")}
	require.Error(t, bad.CheckConfig())
}

func TestReloadConfigKeepsWallet(t *testing.T) {
	old := GetConfig()
	defer SetConfig(old)

	current := NewDefaultConfig()
	current.Wallet = &WalletConfig{Address: "xpla1keep"}
	SetConfig(current)

	path := writeFile(t, "config.toml", `
[Confirm]
TimeoutMs = 9000
IntervalMs = 900
`)
	config, err := reloadConfig(path)
	require.NoError(t, err)
	require.Same(t, config, GetConfig())
	require.Equal(t, int64(9000), GetConfig().Confirm.TimeoutMs)
	require.Equal(t, "xpla1keep", GetConfig().Wallet.Address)

	bad := writeFile(t, "bad.toml", `
[Confirm]
TimeoutMs = 100
IntervalMs = 900
`)
	_, err = reloadConfig(bad)
	require.Error(t, err)
	require.Same(t, config, GetConfig())
}
