package parser

import (
	"fmt"
	"regexp"
	"strings"

	"swapbridge/pkg/types"
)

// Command is a parsed swap instruction
type Command struct {
	Amount string
	Pair   types.TokenPair
}

var commandPattern = regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 ETH to USDC"
//   - "1.5 ETH to USDT"
//   - "0.25 weth to usdc"
func ParseSwapCommand(command string) (*Command, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "SWAP" if present at the beginning
	command = strings.TrimPrefix(command, "SWAP ")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: '<amount> ETH to <USDC|USDT>' (e.g., '1.5 ETH to USDC')")
	}

	source := NormalizeTokenSymbol(matches[2])
	dest := NormalizeTokenSymbol(matches[3])

	pair, err := types.ParseTokenPair(source + "_" + dest)
	if err != nil {
		return nil, err
	}

	return &Command{Amount: matches[1], Pair: pair}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Handle common aliases
	aliases := map[string]string{
		"WETH":  "ETH",
		"USDT0": "USDT",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
