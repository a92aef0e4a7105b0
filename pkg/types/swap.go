package types

import (
	"fmt"
	"strings"
	"time"
)

// TokenPair identifies the swap leg of the flow
type TokenPair string

const (
	PairETHUSDC TokenPair = "ETH_USDC"
	PairETHUSDT TokenPair = "ETH_USDT"
)

// DefaultPair is the pair selected when a flow starts
const DefaultPair = PairETHUSDC

// ParseTokenPair accepts "ETH_USDC", "eth-usdc" and similar spellings
func ParseTokenPair(s string) (TokenPair, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, "/", "_")

	pair := TokenPair(normalized)
	if !pair.Valid() {
		return "", fmt.Errorf("unsupported token pair '%s' (expected ETH_USDC or ETH_USDT)", s)
	}
	return pair, nil
}

// Valid reports whether the pair is one the flow supports
func (p TokenPair) Valid() bool {
	return p == PairETHUSDC || p == PairETHUSDT
}

// Source returns the token sold by the swap
func (p TokenPair) Source() string {
	source, _, _ := strings.Cut(string(p), "_")
	return source
}

// Dest returns the stablecoin bought by the swap and later sent
func (p TokenPair) Dest() string {
	_, dest, _ := strings.Cut(string(p), "_")
	return dest
}

// SwapRequest is handed to a swap provider
type SwapRequest struct {
	Amount string
	Pair   TokenPair
	Owner  string // connected wallet address, receives the swapped tokens
}

// SendRequest is handed to a bridge provider
type SendRequest struct {
	Amount        string
	Token         string
	RecipientAddr string
	Memo          string
	Owner         string
}

// Receipt describes a completed provider operation
type Receipt struct {
	ID             string    `json:"id"`
	TxHash         string    `json:"tx_hash,omitempty"`
	DestTxHash     string    `json:"dest_tx_hash,omitempty"` // delivery tx on the destination chain
	DepositAddress string    `json:"deposit_address,omitempty"`
	AmountIn       string    `json:"amount_in"`
	AmountOut      string    `json:"amount_out,omitempty"`
	Token          string    `json:"token"`
	Recipient      string    `json:"recipient,omitempty"`
	Memo           string    `json:"memo,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}
