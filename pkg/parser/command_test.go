package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/pkg/types"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		input  string
		amount string
		pair   types.TokenPair
	}{
		{"swap 1 ETH to USDC", "1", types.PairETHUSDC},
		{"1.5 eth to usdt", "1.5", types.PairETHUSDT},
		{"  0.25 WETH TO USDC ", "0.25", types.PairETHUSDC},
		{"2 eth to usdt0", "2", types.PairETHUSDT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseSwapCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, cmd.Amount)
			assert.Equal(t, tt.pair, cmd.Pair)
		})
	}
}

func TestParseSwapCommand_Invalid(t *testing.T) {
	_, err := ParseSwapCommand("swap ETH to USDC")
	assert.ErrorContains(t, err, "invalid swap command format")

	_, err = ParseSwapCommand("1 SOL to USDC")
	assert.ErrorContains(t, err, "unsupported token pair")

	_, err = ParseSwapCommand("1 USDC to ETH")
	assert.Error(t, err)
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "ETH", NormalizeTokenSymbol(" weth "))
	assert.Equal(t, "USDC", NormalizeTokenSymbol("usdc"))
	assert.Equal(t, "XLM", NormalizeTokenSymbol("xlm"))
}
