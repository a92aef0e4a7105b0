package intents

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"swapbridge/pkg/deposit"
	"swapbridge/pkg/provider"
	"swapbridge/pkg/types"
)

// Swapper swaps native ETH into a stablecoin on the same EVM chain
type Swapper struct {
	exec *executor
}

// NewSwapper creates a swap provider funding deposits with native ETH
func NewSwapper(api API, depositor deposit.Depositor, opts Options, log logrus.FieldLogger) *Swapper {
	return &Swapper{exec: newExecutor(api, depositor, opts, log.WithField("pkg", "intents.Swapper"))}
}

// Swap implements provider.Swapper
func (s *Swapper) Swap(ctx context.Context, req types.SwapRequest, progress provider.ProgressFunc) (*types.Receipt, error) {
	if !req.Pair.Valid() {
		return nil, fmt.Errorf("unsupported token pair '%s'", req.Pair)
	}

	chain := s.exec.opts.SourceChain
	source, dest, err := s.exec.resolve(ctx, req.Pair.Source(), chain, req.Pair.Dest(), chain)
	if err != nil {
		return nil, err
	}

	account := s.exec.account(req.Owner)
	return s.exec.run(ctx, order{
		source:    source,
		dest:      dest,
		amount:    req.Amount,
		recipient: account,
		refundTo:  account,
	}, true, progress)
}

// Bridge delivers a stablecoin held on the EVM chain to the destination chain
type Bridge struct {
	exec *executor
}

// NewBridge creates a bridge provider funding deposits with ERC20 transfers
func NewBridge(api API, depositor deposit.Depositor, opts Options, log logrus.FieldLogger) *Bridge {
	return &Bridge{exec: newExecutor(api, depositor, opts, log.WithField("pkg", "intents.Bridge"))}
}

// Send implements provider.Bridge
func (b *Bridge) Send(ctx context.Context, req types.SendRequest, progress provider.ProgressFunc) (*types.Receipt, error) {
	if req.RecipientAddr == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	opts := b.exec.opts
	source, dest, err := b.exec.resolve(ctx, req.Token, opts.SourceChain, req.Token, opts.DestChain)
	if err != nil {
		return nil, err
	}

	return b.exec.run(ctx, order{
		source:    source,
		dest:      dest,
		amount:    req.Amount,
		recipient: req.RecipientAddr,
		refundTo:  b.exec.account(req.Owner),
		memo:      req.Memo,
	}, false, progress)
}
