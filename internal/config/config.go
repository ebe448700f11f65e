package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// USDCMint is the USDC mint on Solana mainnet, the default monitored token.
const USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type Config struct {
	RPCList           []string `mapstructure:"rpc_list"`
	WalletAddress     string   `mapstructure:"wallet_address"`
	TokenMint         string   `mapstructure:"token_mint"`
	TokenSymbol       string   `mapstructure:"token_symbol"`
	TokenDecimals     uint8    `mapstructure:"token_decimals"`
	CheckInterval     int      `mapstructure:"check_interval"`
	DiscordWebhookURL string   `mapstructure:"discord_webhook_url"`
	DebugLogging      bool     `mapstructure:"debug_logging"`
	LogFile           string   `mapstructure:"log_file"`
}

const (
	DefaultCheckInterval = 300 // seconds
	DefaultTokenDecimals = 6
	DefaultTokenSymbol   = "USDC"
	DefaultLogFile       = "monitor.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"check_interval": DefaultCheckInterval,
		"token_decimals": DefaultTokenDecimals,
		"token_symbol":   DefaultTokenSymbol,
		"token_mint":     USDCMint,
		"log_file":       DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.WalletAddress == "" {
		return errors.New("missing wallet_address in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.WalletAddress); err != nil {
		return fmt.Errorf("invalid wallet_address: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(cfg.TokenMint); err != nil {
		return fmt.Errorf("invalid token_mint: %w", err)
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.DiscordWebhookURL == "" {
		return errors.New("missing discord_webhook_url in configuration")
	}
	if err := validateURLWithCache(cfg.DiscordWebhookURL, "https"); err != nil {
		return errors.New("webhook URL must use HTTPS")
	}
	if cfg.CheckInterval <= 0 {
		return errors.New("invalid check_interval")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("USDC_MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if addr := v.GetString("WALLET_ADDRESS"); addr != "" {
		cfg.WalletAddress = addr
	}

	if hook := v.GetString("DISCORD_WEBHOOK_URL"); hook != "" {
		cfg.DiscordWebhookURL = hook
	}

	if envRPCList := v.GetString("RPC_LIST"); envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
