package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigJSON = `{
    "rpc_list": [
        "https://api.mainnet-beta.solana.com",
        "https://solana-api.projectserum.com"
    ],
    "wallet_address": "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp",
    "discord_webhook_url": "https://discord.com/api/webhooks/123/token",
    "debug_logging": true
}`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, DefaultCheckInterval, cfg.CheckInterval)
	assert.Equal(t, uint8(DefaultTokenDecimals), cfg.TokenDecimals)
	assert.Equal(t, DefaultTokenSymbol, cfg.TokenSymbol)
	assert.Equal(t, USDCMint, cfg.TokenMint)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.Len(t, cfg.RPCList, 2)
	assert.True(t, cfg.DebugLogging)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing wallet address",
			content: `{
                "rpc_list": ["https://api.mainnet-beta.solana.com"],
                "discord_webhook_url": "https://discord.com/api/webhooks/123/token"
            }`,
		},
		{
			name: "malformed wallet address",
			content: `{
                "rpc_list": ["https://api.mainnet-beta.solana.com"],
                "wallet_address": "not-a-pubkey!",
                "discord_webhook_url": "https://discord.com/api/webhooks/123/token"
            }`,
		},
		{
			name: "empty rpc list",
			content: `{
                "rpc_list": [],
                "wallet_address": "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp",
                "discord_webhook_url": "https://discord.com/api/webhooks/123/token"
            }`,
		},
		{
			name: "webhook not https",
			content: `{
                "rpc_list": ["https://api.mainnet-beta.solana.com"],
                "wallet_address": "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp",
                "discord_webhook_url": "ftp://discord.com/api/webhooks/123/token"
            }`,
		},
		{
			name: "negative check interval",
			content: `{
                "rpc_list": ["https://api.mainnet-beta.solana.com"],
                "wallet_address": "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp",
                "discord_webhook_url": "https://discord.com/api/webhooks/123/token",
                "check_interval": -1
            }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTestConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("USDC_MONITOR_WALLET_ADDRESS", "So11111111111111111111111111111111111111112")
	t.Setenv("USDC_MONITOR_RPC_LIST", "https://rpc-one.example.com, https://rpc-two.example.com")

	cfg, err := LoadConfig(writeTestConfig(t, validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, "So11111111111111111111111111111111111111112", cfg.WalletAddress)
	assert.Equal(t, []string{"https://rpc-one.example.com", "https://rpc-two.example.com"}, cfg.RPCList)
}
