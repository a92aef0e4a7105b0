package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"swapbridge/config"
)

// Solana connects a wallet derived from a base58 private key
type Solana struct {
	publicKey solana.PublicKey
	client    *rpc.Client
}

// NewSolana loads the key; the RPC client is only used for a balance check
func NewSolana(cfg config.SolanaConfig) (*Solana, error) {
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	w := &Solana{publicKey: privateKey.PublicKey()}
	if cfg.RPCUrl != "" {
		w.client = rpc.New(cfg.RPCUrl)
	}
	return w, nil
}

// Connect returns the base58 public key
func (w *Solana) Connect(ctx context.Context) (string, error) {
	if w.client != nil {
		balance, err := w.client.GetBalance(ctx, w.publicKey, rpc.CommitmentFinalized)
		if err != nil {
			return "", fmt.Errorf("failed to get balance: %w", err)
		}
		if balance.Value == 0 {
			return "", fmt.Errorf("wallet %s has no SOL balance", w.publicKey)
		}
	}
	return w.publicKey.String(), nil
}
