package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"swapbridge/config"
	"swapbridge/pkg/client"
	"swapbridge/pkg/deposit"
	"swapbridge/pkg/intents"
	"swapbridge/pkg/provider"
	"swapbridge/pkg/wallet"
)

// buildProviders assembles the provider set for the configured mode. The
// returned func releases network clients.
func buildProviders(cfg *config.Config, console bool, log logrus.FieldLogger) (provider.Set, func(), error) {
	notifiers := provider.Multi{provider.NewLogNotifier(log.WithField("pkg", "notify"))}
	if console {
		notifiers = append(notifiers, provider.NewConsoleNotifierTo(os.Stdout))
	}

	switch cfg.Mode {
	case config.ModeSimulated:
		set := simulatedProviders(cfg.Simulation)
		set.Notifier = notifiers
		return set, func() {}, nil

	case config.ModeLive:
		set, cleanup, err := liveProviders(cfg, log)
		if err != nil {
			return provider.Set{}, nil, err
		}
		set.Notifier = notifiers
		return set, cleanup, nil
	}

	return provider.Set{}, nil, fmt.Errorf("unknown mode '%s'", cfg.Mode)
}

func simulatedProviders(sim config.SimulationConfig) provider.Set {
	w := &provider.SimulatedWallet{
		Latency: sim.ConnectLatency,
		Address: sim.WalletAddress,
		Fail:    sim.FailStage == "connect",
	}
	swapper := &provider.SimulatedSwapper{Ticker: provider.Ticker{
		Interval:  sim.SwapTick,
		Increment: sim.SwapIncrement,
	}}
	bridge := &provider.SimulatedBridge{Ticker: provider.Ticker{
		Interval:  sim.SendTick,
		Increment: sim.SendIncrement,
	}}

	// fail half way through the stage
	switch sim.FailStage {
	case "swap":
		swapper.Ticker.FailAt = 50
	case "send":
		bridge.Ticker.FailAt = 50
	}

	return provider.Set{Wallet: w, Swapper: swapper, Bridge: bridge}
}

func liveProviders(cfg *config.Config, log logrus.FieldLogger) (provider.Set, func(), error) {
	depositor, err := deposit.NewEVMDepositor(cfg.EVM)
	if err != nil {
		return provider.Set{}, nil, fmt.Errorf("failed to set up EVM deposits: %w", err)
	}

	var w provider.Wallet
	switch strings.ToLower(cfg.Wallet.Kind) {
	case config.WalletSolana:
		w, err = wallet.NewSolana(cfg.Solana)
	default:
		w, err = wallet.NewEVM(cfg.EVM)
	}
	if err != nil {
		depositor.Close()
		return provider.Set{}, nil, fmt.Errorf("failed to set up wallet: %w", err)
	}

	api := intents.NewAPI(client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL))
	opts := intents.Options{
		SourceChain:  cfg.EVM.Chain,
		DestChain:    cfg.OneClick.DestChain,
		Account:      depositor.From().Hex(),
		Tokens:       cfg.EVM.Tokens,
		PollInterval: cfg.OneClick.PollInterval,
		Timeout:      cfg.OneClick.Timeout,
	}

	return provider.Set{
		Wallet:  w,
		Swapper: intents.NewSwapper(api, depositor, opts, log),
		Bridge:  intents.NewBridge(api, depositor, opts, log),
	}, depositor.Close, nil
}
