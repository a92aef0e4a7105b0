package provider

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/pkg/types"
)

func collect() (*[]int, ProgressFunc) {
	var got []int
	return &got, func(p int) { got = append(got, p) }
}

func TestTicker_Run(t *testing.T) {
	tests := []struct {
		name      string
		increment int
		want      []int
	}{
		{"swap", DefaultSwapIncrement, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
		{"send", DefaultSendIncrement, []int{8, 16, 24, 32, 40, 48, 56, 64, 72, 80, 88, 96, 100}},
		{"overshoot", 30, []int{30, 60, 90, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, progress := collect()
			err := Ticker{Interval: time.Millisecond, Increment: tt.increment}.Run(context.Background(), progress)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestTicker_FailAt(t *testing.T) {
	got, progress := collect()
	err := Ticker{Interval: time.Millisecond, Increment: 10, FailAt: 50}.Run(context.Background(), progress)
	assert.ErrorIs(t, err, ErrSimulatedFailure)
	assert.Equal(t, []int{10, 20, 30, 40}, *got)
}

func TestTicker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, progress := collect()
	err := Ticker{Interval: time.Hour, Increment: 10}.Run(ctx, progress)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *got)
}

func TestTicker_InvalidIncrement(t *testing.T) {
	err := Ticker{Interval: time.Millisecond}.Run(context.Background(), nil)
	assert.ErrorContains(t, err, "must be positive")
}

func TestSimulatedWallet(t *testing.T) {
	w := NewSimulatedWallet()
	assert.Equal(t, DefaultConnectLatency, w.Latency)

	w.Latency = time.Millisecond
	addr, err := w.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PlaceholderAddress, addr)

	w.Fail = true
	_, err = w.Connect(context.Background())
	assert.ErrorIs(t, err, ErrSimulatedFailure)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Latency = time.Hour
	_, err = w.Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedSwapperAndBridge(t *testing.T) {
	swapper := NewSimulatedSwapper()
	assert.Equal(t, DefaultSwapTick, swapper.Ticker.Interval)
	swapper.Ticker.Interval = time.Millisecond

	receipt, err := swapper.Swap(context.Background(), types.SwapRequest{Amount: "1.5", Pair: types.PairETHUSDT, Owner: PlaceholderAddress}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "1.5", receipt.AmountIn)
	assert.Equal(t, "USDT", receipt.Token)

	bridge := NewSimulatedBridge()
	assert.Equal(t, DefaultSendTick, bridge.Ticker.Interval)
	bridge.Ticker.Interval = time.Millisecond
	bridge.Ticker.FailAt = 100

	_, err = bridge.Send(context.Background(), types.SendRequest{Amount: "1.5", Token: "USDT", RecipientAddr: "GABC"}, nil)
	assert.ErrorIs(t, err, ErrSimulatedFailure)
	assert.ErrorContains(t, err, "send to GABC failed")

	bridge.Ticker.FailAt = 0
	receipt, err = bridge.Send(context.Background(), types.SendRequest{Amount: "1.5", Token: "USDT", RecipientAddr: "GABC", Memo: "m"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "GABC", receipt.Recipient)
	assert.Equal(t, "m", receipt.Memo)
}

func TestNotifiers(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleNotifierTo(&buf)

	log, hook := test.NewNullLogger()
	logged := NewLogNotifier(log)

	Multi{console, nil, logged, Discard{}}.Notify("Swap Successful", "ETH swapped to USDC")

	assert.Contains(t, buf.String(), "Swap Successful")
	assert.Contains(t, buf.String(), "ETH swapped to USDC")

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "ETH swapped to USDC", entry.Message)
	assert.Equal(t, "Swap Successful", entry.Data["title"])
}

func TestErrSimulatedFailureWrapped(t *testing.T) {
	swapper := &SimulatedSwapper{Ticker: Ticker{Interval: time.Millisecond, Increment: 50, FailAt: 50}}
	_, err := swapper.Swap(context.Background(), types.SwapRequest{Amount: "2", Pair: types.PairETHUSDC}, nil)
	assert.True(t, errors.Is(err, ErrSimulatedFailure))
	assert.ErrorContains(t, err, "swap 2 ETH failed")
}
