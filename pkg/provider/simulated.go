package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"swapbridge/pkg/types"
)

const (
	DefaultConnectLatency = 2000 * time.Millisecond
	DefaultSwapTick       = 300 * time.Millisecond
	DefaultSwapIncrement  = 10
	DefaultSendTick       = 400 * time.Millisecond
	DefaultSendIncrement  = 8

	// PlaceholderAddress is returned by the simulated wallet
	PlaceholderAddress = "0x742d35Cc6634C0532925a3b8D4C0532925a3b8D4"
)

// ErrSimulatedFailure is returned by simulated providers configured to fail
var ErrSimulatedFailure = errors.New("simulated provider failure")

// SimulatedWallet connects after a fixed latency
type SimulatedWallet struct {
	Latency time.Duration
	Address string
	Fail    bool
}

// NewSimulatedWallet creates a wallet with the default latency and address
func NewSimulatedWallet() *SimulatedWallet {
	return &SimulatedWallet{
		Latency: DefaultConnectLatency,
		Address: PlaceholderAddress,
	}
}

// Connect waits for the configured latency and returns the fixed address
func (w *SimulatedWallet) Connect(ctx context.Context) (string, error) {
	timer := time.NewTimer(w.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	if w.Fail {
		return "", fmt.Errorf("wallet connection rejected: %w", ErrSimulatedFailure)
	}
	return w.Address, nil
}

// Ticker advances a progress estimate by a fixed increment on every tick
// until it reaches 100
type Ticker struct {
	Interval  time.Duration
	Increment int
	// FailAt makes the run fail once progress reaches this value (0 disables)
	FailAt int
}

// Run drives progress from 0 to 100 and returns when done or when ctx ends
func (t Ticker) Run(ctx context.Context, progress ProgressFunc) error {
	if t.Increment <= 0 {
		return fmt.Errorf("tick increment must be positive, got %d", t.Increment)
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	current := 0
	for current < 100 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current += t.Increment
			if current > 100 {
				current = 100
			}
			if t.FailAt > 0 && current >= t.FailAt {
				return ErrSimulatedFailure
			}
			if progress != nil {
				progress(current)
			}
		}
	}

	return nil
}

// SimulatedSwapper pretends to swap using a ticker
type SimulatedSwapper struct {
	Ticker Ticker
}

// NewSimulatedSwapper creates a swapper advancing 10 every 300ms
func NewSimulatedSwapper() *SimulatedSwapper {
	return &SimulatedSwapper{Ticker: Ticker{Interval: DefaultSwapTick, Increment: DefaultSwapIncrement}}
}

// Swap runs the ticker and returns a receipt for the requested amount
func (s *SimulatedSwapper) Swap(ctx context.Context, req types.SwapRequest, progress ProgressFunc) (*types.Receipt, error) {
	if err := s.Ticker.Run(ctx, progress); err != nil {
		return nil, fmt.Errorf("swap %s %s failed: %w", req.Amount, req.Pair.Source(), err)
	}

	return &types.Receipt{
		ID:          uuid.New().String(),
		AmountIn:    req.Amount,
		Token:       req.Pair.Dest(),
		Recipient:   req.Owner,
		CompletedAt: time.Now(),
	}, nil
}

// SimulatedBridge pretends to send using a ticker
type SimulatedBridge struct {
	Ticker Ticker
}

// NewSimulatedBridge creates a bridge advancing 8 every 400ms
func NewSimulatedBridge() *SimulatedBridge {
	return &SimulatedBridge{Ticker: Ticker{Interval: DefaultSendTick, Increment: DefaultSendIncrement}}
}

// Send runs the ticker and returns a receipt addressed to the recipient
func (b *SimulatedBridge) Send(ctx context.Context, req types.SendRequest, progress ProgressFunc) (*types.Receipt, error) {
	if err := b.Ticker.Run(ctx, progress); err != nil {
		return nil, fmt.Errorf("send to %s failed: %w", req.RecipientAddr, err)
	}

	return &types.Receipt{
		ID:          uuid.New().String(),
		AmountIn:    req.Amount,
		Token:       req.Token,
		Recipient:   req.RecipientAddr,
		Memo:        req.Memo,
		CompletedAt: time.Now(),
	}, nil
}
