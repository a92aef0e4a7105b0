package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeSimulated = "simulated"
	ModeLive      = "live"

	WalletEVM    = "evm"
	WalletSolana = "solana"
)

// Config holds the application configuration
type Config struct {
	Mode       string           `mapstructure:"mode"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Wallet     WalletConfig     `mapstructure:"wallet"`
	EVM        EVMNetwork       `mapstructure:"evm"`
	Solana     SolanaConfig     `mapstructure:"solana"`
	OneClick   OneClickConfig   `mapstructure:"oneclick"`
	Log        LogConfig        `mapstructure:"log"`
}

// SimulationConfig tunes the timer driven providers
type SimulationConfig struct {
	ConnectLatency time.Duration `mapstructure:"connect_latency"`
	SwapTick       time.Duration `mapstructure:"swap_tick"`
	SwapIncrement  int           `mapstructure:"swap_increment"`
	SendTick       time.Duration `mapstructure:"send_tick"`
	SendIncrement  int           `mapstructure:"send_increment"`
	WalletAddress  string        `mapstructure:"wallet_address"`
	// FailStage makes one simulated stage fail: connect, swap or send
	FailStage string `mapstructure:"fail_stage"`
}

// WalletConfig selects the live wallet provider
type WalletConfig struct {
	Kind string `mapstructure:"kind"`
}

// EVMNetwork holds configuration for the EVM chain the swap runs on
type EVMNetwork struct {
	Chain      string            `mapstructure:"chain"` // 1Click blockchain name, e.g. "eth"
	RPCUrl     string            `mapstructure:"rpc_url"`
	PrivateKey string            `mapstructure:"private_key"`
	ChainID    int64             `mapstructure:"chain_id"`
	GasLimit   *uint64           `mapstructure:"gas_limit"`
	GasPrice   *int64            `mapstructure:"gas_price"`
	Tokens     map[string]string `mapstructure:"tokens"` // symbol -> ERC20 contract
}

// SolanaConfig holds Solana wallet configuration
type SolanaConfig struct {
	RPCUrl     string `mapstructure:"rpc_url"`
	PrivateKey string `mapstructure:"private_key"`
}

// OneClickConfig configures the NEAR Intents 1Click API
type OneClickConfig struct {
	JWTToken     string        `mapstructure:"jwt_token"`
	BaseURL      string        `mapstructure:"base_url"`
	DestChain    string        `mapstructure:"dest_chain"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeSimulated)

	v.SetDefault("simulation.connect_latency", 2000*time.Millisecond)
	v.SetDefault("simulation.swap_tick", 300*time.Millisecond)
	v.SetDefault("simulation.swap_increment", 10)
	v.SetDefault("simulation.send_tick", 400*time.Millisecond)
	v.SetDefault("simulation.send_increment", 8)
	v.SetDefault("simulation.wallet_address", "0x742d35Cc6634C0532925a3b8D4C0532925a3b8D4")
	v.SetDefault("simulation.fail_stage", "")

	v.SetDefault("wallet.kind", WalletEVM)

	v.SetDefault("evm.chain", "eth")
	v.SetDefault("evm.rpc_url", "")
	v.SetDefault("evm.private_key", "")
	v.SetDefault("evm.chain_id", 1)
	v.SetDefault("evm.tokens", map[string]string{
		"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	})

	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.private_key", "")

	v.SetDefault("oneclick.jwt_token", "")
	v.SetDefault("oneclick.base_url", "https://1click.chaindefuser.com")
	v.SetDefault("oneclick.dest_chain", "stellar")
	v.SetDefault("oneclick.poll_interval", 10*time.Second)
	v.SetDefault("oneclick.timeout", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".swapbridge")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	setDefaults(v)

	// SWAPBRIDGE_ONECLICK_JWT_TOKEN -> oneclick.jwt_token
	v.SetEnvPrefix("SWAPBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected mode has what it needs
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSimulated:
		if c.Simulation.SwapIncrement <= 0 || c.Simulation.SendIncrement <= 0 {
			return fmt.Errorf("simulation increments must be positive")
		}
		switch c.Simulation.FailStage {
		case "", "connect", "swap", "send":
		default:
			return fmt.Errorf("simulation.fail_stage must be one of connect, swap or send, got '%s'", c.Simulation.FailStage)
		}
	case ModeLive:
		if c.OneClick.JWTToken == "" {
			return fmt.Errorf("JWT token not found. Please set SWAPBRIDGE_ONECLICK_JWT_TOKEN environment variable or add oneclick.jwt_token to .swapbridge.yaml")
		}
		if c.EVM.PrivateKey == "" || c.EVM.RPCUrl == "" {
			return fmt.Errorf("live mode funds deposits from an EVM key: set evm.rpc_url and evm.private_key")
		}
		if c.Wallet.Kind != WalletEVM && c.Wallet.Kind != WalletSolana {
			return fmt.Errorf("wallet.kind must be '%s' or '%s', got '%s'", WalletEVM, WalletSolana, c.Wallet.Kind)
		}
		if c.Wallet.Kind == WalletSolana && c.Solana.PrivateKey == "" {
			return fmt.Errorf("solana wallet selected but solana.private_key is not set")
		}
	default:
		return fmt.Errorf("mode must be '%s' or '%s', got '%s'", ModeSimulated, ModeLive, c.Mode)
	}
	return nil
}
