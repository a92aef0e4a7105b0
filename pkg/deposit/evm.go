package deposit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"swapbridge/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Depositor funds a deposit address handed out by a quote
type Depositor interface {
	SendNative(ctx context.Context, to string, amount string) (string, error)
	SendToken(ctx context.Context, tokenContract, to string, amount string, decimals int) (string, error)
}

// ERC20 transfer and balanceOf ABI
const erc20ABI = `[
{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}
]`

// EVMDepositor handles deposits on an EVM-compatible blockchain
type EVMDepositor struct {
	network    config.EVMNetwork
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	from       common.Address
	erc20      abi.ABI
}

// NewEVMDepositor dials the configured RPC endpoint and loads the signing key
func NewEVMDepositor(network config.EVMNetwork) (*EVMDepositor, error) {
	if network.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for EVM network")
	}

	privateKey, err := ParsePrivateKey(network.PrivateKey)
	if err != nil {
		return nil, err
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	client, err := ethclient.Dial(network.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	return &EVMDepositor{
		network:    network,
		client:     client,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
		erc20:      parsedABI,
	}, nil
}

// ParsePrivateKey decodes a hex private key with or without 0x prefix
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("private key not configured for EVM network")
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// From returns the address deposits are sent from
func (e *EVMDepositor) From() common.Address {
	return e.from
}

// SendNative sends native ETH to the deposit address
func (e *EVMDepositor) SendNative(ctx context.Context, to string, amount string) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}
	toAddress := common.HexToAddress(to)

	amountWei, err := ParseAmount(amount, 18)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}

	balance, err := e.client.BalanceAt(ctx, e.from, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}
	if balance.Cmp(amountWei) < 0 {
		return "", fmt.Errorf("insufficient balance: have %s wei, need %s wei", balance.String(), amountWei.String())
	}

	// Standard ETH transfer
	gasLimit := uint64(21000)
	if e.network.GasLimit != nil {
		gasLimit = *e.network.GasLimit
	}

	return e.signAndSend(ctx, toAddress, amountWei, gasLimit, nil)
}

// SendToken sends an ERC20 token to the deposit address
func (e *EVMDepositor) SendToken(ctx context.Context, tokenContract, to string, amount string, decimals int) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}
	if !common.IsHexAddress(tokenContract) {
		return "", fmt.Errorf("invalid token contract address: %s", tokenContract)
	}
	toAddress := common.HexToAddress(to)
	tokenAddress := common.HexToAddress(tokenContract)

	amountUnits, err := ParseAmount(amount, decimals)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}

	balance, err := e.tokenBalance(ctx, tokenAddress)
	if err != nil {
		return "", fmt.Errorf("failed to get token balance: %w", err)
	}
	if balance.Cmp(amountUnits) < 0 {
		return "", fmt.Errorf("insufficient token balance: have %s, need %s", balance.String(), amountUnits.String())
	}

	data, err := e.erc20.Pack("transfer", toAddress, amountUnits)
	if err != nil {
		return "", fmt.Errorf("failed to pack transfer data: %w", err)
	}

	// Typical ERC20 transfer
	gasLimit := uint64(100000)
	if e.network.GasLimit != nil {
		gasLimit = *e.network.GasLimit
	} else {
		msg := ethereum.CallMsg{From: e.from, To: &tokenAddress, Data: data}
		if estimated, err := e.client.EstimateGas(ctx, msg); err == nil {
			gasLimit = estimated * 120 / 100 // 20% buffer
		}
	}

	return e.signAndSend(ctx, tokenAddress, big.NewInt(0), gasLimit, data)
}

func (e *EVMDepositor) signAndSend(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64, data []byte) (string, error) {
	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := e.gasPrice(ctx)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	chainID := big.NewInt(e.network.ChainID)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), e.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

// gasPrice returns the configured gas price or the network suggestion
func (e *EVMDepositor) gasPrice(ctx context.Context) (*big.Int, error) {
	if e.network.GasPrice != nil {
		return big.NewInt(*e.network.GasPrice), nil
	}

	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}

func (e *EVMDepositor) tokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := e.erc20.Pack("balanceOf", e.from)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf data: %w", err)
	}

	result, err := e.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf: %w", err)
	}

	return new(big.Int).SetBytes(result), nil
}

// ParseAmount converts a decimal amount to base units with the given
// number of decimals. Digits beyond the token precision are truncated.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	value, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value.Mul(value, new(big.Rat).SetInt(scale))

	return new(big.Int).Quo(value.Num(), value.Denom()), nil
}

// Close closes the client connection
func (e *EVMDepositor) Close() {
	if e.client != nil {
		e.client.Close()
	}
}
