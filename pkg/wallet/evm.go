// Package wallet contains wallet providers backed by locally held keys.
package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"swapbridge/config"
	"swapbridge/pkg/deposit"
)

// BalanceReader reads an account balance; satisfied by *ethclient.Client
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// EVM connects a wallet derived from a hex private key
type EVM struct {
	address common.Address
	balance BalanceReader
}

// NewEVM loads the key from the network configuration. When an RPC URL is
// configured, Connect also checks that the account holds a balance.
func NewEVM(network config.EVMNetwork) (*EVM, error) {
	key, err := deposit.ParsePrivateKey(network.PrivateKey)
	if err != nil {
		return nil, err
	}

	w := &EVM{address: crypto.PubkeyToAddress(key.PublicKey)}
	if network.RPCUrl != "" {
		client, err := ethclient.Dial(network.RPCUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
		}
		w.balance = client
	}
	return w, nil
}

// NewEVMWithReader is used when the balance source is supplied by the caller
func NewEVMWithReader(hexKey string, reader BalanceReader) (*EVM, error) {
	key, err := deposit.ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return &EVM{address: crypto.PubkeyToAddress(key.PublicKey), balance: reader}, nil
}

// Connect returns the checksummed address
func (w *EVM) Connect(ctx context.Context) (string, error) {
	if w.balance != nil {
		balance, err := w.balance.BalanceAt(ctx, w.address, nil)
		if err != nil {
			return "", fmt.Errorf("failed to get balance: %w", err)
		}
		if balance.Sign() == 0 {
			return "", fmt.Errorf("wallet %s has no ETH balance", w.address.Hex())
		}
	}
	return w.address.Hex(), nil
}
