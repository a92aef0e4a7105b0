package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if yaml != "" {
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ModeSimulated, cfg.Mode)
	assert.Equal(t, 2*time.Second, cfg.Simulation.ConnectLatency)
	assert.Equal(t, 300*time.Millisecond, cfg.Simulation.SwapTick)
	assert.Equal(t, 10, cfg.Simulation.SwapIncrement)
	assert.Equal(t, 400*time.Millisecond, cfg.Simulation.SendTick)
	assert.Equal(t, 8, cfg.Simulation.SendIncrement)
	assert.Equal(t, "stellar", cfg.OneClick.DestChain)
	assert.Equal(t, "https://1click.chaindefuser.com", cfg.OneClick.BaseURL)
	assert.Equal(t, int64(1), cfg.EVM.ChainID)
	assert.Nil(t, cfg.EVM.GasLimit)
}

func TestFileOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(t, `
simulation:
  swap_tick: 5ms
  fail_stage: send
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, cfg.Simulation.SwapTick)
	assert.Equal(t, "send", cfg.Simulation.FailStage)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown mode", "mode: dry", "mode must be"},
		{"bad fail stage", "simulation:\n  fail_stage: bridge", "fail_stage"},
		{"zero increment", "simulation:\n  swap_increment: 0", "increments must be positive"},
		{"live without token", "mode: live", "JWT token not found"},
		{"live without evm key", "mode: live\noneclick:\n  jwt_token: abc", "evm.rpc_url"},
		{"live solana without key", "mode: live\nwallet:\n  kind: solana\noneclick:\n  jwt_token: abc\nevm:\n  rpc_url: http://localhost:8545\n  private_key: aa", "solana.private_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_LiveOK(t *testing.T) {
	cfg, err := fromViper(newViper(t, `
mode: live
oneclick:
  jwt_token: abc
evm:
  rpc_url: http://localhost:8545
  private_key: "0x01"
  gas_limit: 50000
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.EVM.GasLimit)
	assert.Equal(t, uint64(50000), *cfg.EVM.GasLimit)
}

func TestFromViper_IndependentConfigs(t *testing.T) {
	v := newViper(t, "")

	first, err := fromViper(v)
	require.NoError(t, err)
	second, err := fromViper(v)
	require.NoError(t, err)

	require.NotSame(t, first, second)
	first.Simulation.FailStage = "swap"
	assert.Empty(t, second.Simulation.FailStage)
}
