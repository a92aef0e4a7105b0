// Package intents executes the swap and send stages through the NEAR Intents
// 1Click API: quote, fund the deposit address, then follow execution status.
package intents

import (
	"context"

	"swapbridge/pkg/client"
)

// Token is a 1Click asset on a specific chain
type Token struct {
	AssetID  string
	Symbol   string
	Chain    string
	Decimals int
	Contract string
}

// Quote is the part of a 1Click quote the providers act on
type Quote struct {
	DepositAddress string
	AmountIn       string
	AmountOut      string
	TimeEstimate   float64
}

// Execution is a snapshot of the execution status of a deposit address
type Execution struct {
	Status     string
	AmountIn   string
	AmountOut  string
	DestTxHash string
}

// API is the subset of 1Click the providers need
type API interface {
	Token(ctx context.Context, symbol, chain string) (Token, error)
	Quote(ctx context.Context, params client.QuoteParams) (Quote, error)
	SubmitDeposit(ctx context.Context, depositAddress, txHash string) error
	Status(ctx context.Context, depositAddress string) (Execution, error)
}

type oneClickAPI struct {
	client *client.OneClickClient
}

// NewAPI adapts the SDK backed client to API
func NewAPI(c *client.OneClickClient) API {
	return &oneClickAPI{client: c}
}

func (a *oneClickAPI) Token(ctx context.Context, symbol, chain string) (Token, error) {
	token, err := a.client.FindTokenOnChain(ctx, symbol, chain)
	if err != nil {
		return Token{}, err
	}

	return Token{
		AssetID:  token.GetAssetId(),
		Symbol:   token.GetSymbol(),
		Chain:    token.GetBlockchain(),
		Decimals: int(token.GetDecimals()),
		Contract: token.GetContractAddress(),
	}, nil
}

func (a *oneClickAPI) Quote(ctx context.Context, params client.QuoteParams) (Quote, error) {
	resp, err := a.client.GetQuote(ctx, params)
	if err != nil {
		return Quote{}, err
	}

	details := resp.GetQuote()
	return Quote{
		DepositAddress: details.GetDepositAddress(),
		AmountIn:       details.GetAmountInFormatted(),
		AmountOut:      details.GetAmountOutFormatted(),
		TimeEstimate:   float64(details.GetTimeEstimate()),
	}, nil
}

func (a *oneClickAPI) SubmitDeposit(ctx context.Context, depositAddress, txHash string) error {
	return a.client.SubmitDepositTx(ctx, depositAddress, txHash)
}

func (a *oneClickAPI) Status(ctx context.Context, depositAddress string) (Execution, error) {
	resp, err := a.client.GetSwapStatus(ctx, depositAddress)
	if err != nil {
		return Execution{}, err
	}

	details := resp.GetSwapDetails()
	exec := Execution{Status: resp.GetStatus()}
	if details.HasAmountInFormatted() {
		exec.AmountIn = details.GetAmountInFormatted()
	}
	if details.HasAmountOutFormatted() {
		exec.AmountOut = details.GetAmountOutFormatted()
	}
	if destTxs := details.GetDestinationChainTxHashes(); len(destTxs) > 0 {
		exec.DestTxHash = destTxs[0].GetHash()
	}
	return exec, nil
}
