// Package provider defines the collaborators the transaction flow delegates
// real-world side effects to, together with simulated implementations and
// notification sinks.
package provider

import (
	"context"

	"swapbridge/pkg/types"
)

// ProgressFunc receives a progress estimate in the range 0..100
type ProgressFunc func(percent int)

// Wallet connects to a wallet and returns its address
type Wallet interface {
	Connect(ctx context.Context) (string, error)
}

// Swapper executes the swap leg
type Swapper interface {
	Swap(ctx context.Context, req types.SwapRequest, progress ProgressFunc) (*types.Receipt, error)
}

// Bridge sends the swapped tokens to the recipient
type Bridge interface {
	Send(ctx context.Context, req types.SendRequest, progress ProgressFunc) (*types.Receipt, error)
}

// Notifier surfaces user-facing notifications. Calls must not block.
type Notifier interface {
	Notify(title, message string)
}

// Set bundles the providers a controller needs
type Set struct {
	Wallet   Wallet
	Swapper  Swapper
	Bridge   Bridge
	Notifier Notifier
}
