package flow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/pkg/types"
)

var connected = Session{Connected: true, WalletAddress: "0xabc"}

func filledState(t *testing.T) State {
	t.Helper()
	s, err := NewState().WithAmount("1.5")
	require.NoError(t, err)
	s, err = s.WithRecipientAddress(validStellarAddress)
	require.NoError(t, err)
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, StepSwap, s.Step)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, types.PairETHUSDC, s.Fields.TokenPair)
	assert.NotNil(t, s.Errors)
	assert.Empty(t, s.Errors)
}

func TestBeginConnect(t *testing.T) {
	next, err := NewState().BeginConnect(Session{})
	require.NoError(t, err)
	assert.Equal(t, StatusConnecting, next.Status)

	_, err = next.BeginConnect(Session{})
	assert.ErrorIs(t, err, ErrBusy)

	_, err = NewState().BeginConnect(connected)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestBeginSwap_Preconditions(t *testing.T) {
	s := filledState(t)

	_, err := s.BeginSwap(Session{})
	assert.ErrorIs(t, err, ErrNotConnected)

	atSend := s
	atSend.Step = StepSend
	_, err = atSend.BeginSwap(connected)
	assert.ErrorIs(t, err, ErrWrongStep)

	swapping, err := s.BeginSwap(connected)
	require.NoError(t, err)
	_, err = swapping.BeginSwap(connected)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestBeginSwap_ValidationFailureKeepsStatus(t *testing.T) {
	s, err := NewState().WithAmount("0")
	require.NoError(t, err)

	next, err := s.BeginSwap(connected)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusIdle, next.Status)
	assert.Equal(t, StepSwap, next.Step)
	assert.Equal(t, MsgInvalidAmount, next.Errors[FieldAmount])
	assert.Equal(t, MsgRecipientMissing, next.Errors[FieldRecipientAddress])
	assert.Empty(t, s.Errors, "receiver must not be mutated")
}

func TestBeginSwap_ErrorsRecomputedWholesale(t *testing.T) {
	s, _ := NewState().WithAmount("0")
	s, _ = s.BeginSwap(connected)
	require.Len(t, s.Errors, 2)

	s, _ = s.WithAmount("2")
	s, _ = s.WithRecipientAddress(validStellarAddress)
	next, err := s.BeginSwap(connected)
	require.NoError(t, err)
	assert.Empty(t, next.Errors)
}

func TestAdvance_ClampsAndNeverDecreases(t *testing.T) {
	s, err := filledState(t).BeginSwap(connected)
	require.NoError(t, err)

	s = s.Advance(30)
	assert.Equal(t, 30, s.Progress)
	s = s.Advance(20)
	assert.Equal(t, 30, s.Progress)
	s = s.Advance(-5)
	assert.Equal(t, 30, s.Progress)
	s = s.Advance(140)
	assert.Equal(t, 100, s.Progress)

	idle := NewState().Advance(50)
	assert.Equal(t, 0, idle.Progress, "progress only moves while swapping or sending")
}

func TestCompleteSwapAndSend(t *testing.T) {
	s, err := filledState(t).BeginSwap(connected)
	require.NoError(t, err)
	s = s.Advance(100)

	s = s.CompleteSwap(&types.Receipt{ID: "swap"})
	assert.Equal(t, StepSend, s.Step)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 0, s.Progress)

	s, err = s.BeginSend()
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, s.Step)
	assert.Equal(t, StatusSending, s.Status)

	s = s.CompleteSend(&types.Receipt{ID: "send"})
	assert.Equal(t, StatusSuccess, s.Status)
	assert.Equal(t, "send", s.SendReceipt.ID)
}

func TestBeginSend_Preconditions(t *testing.T) {
	_, err := NewState().BeginSend()
	assert.ErrorIs(t, err, ErrWrongStep)

	s := NewState()
	s.Step = StepSend
	s.Status = StatusConnecting
	_, err = s.BeginSend()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestBack(t *testing.T) {
	s := NewState()
	same, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, s, same)

	s.Step = StepSend
	s.Status = StatusIdle
	prev, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepSwap, prev.Step)
	assert.Equal(t, StatusIdle, prev.Status)

	s.Step = StepConfirm
	s.Status = StatusSuccess
	s.Progress = 0
	prev, err = s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepSend, prev.Step)
	assert.Equal(t, StatusIdle, prev.Status)

	for _, status := range []Status{StatusSwapping, StatusSending} {
		s.Status = status
		_, err = s.Back()
		assert.ErrorIs(t, err, ErrBusy)
	}
}

func TestFailAndRetryableSend(t *testing.T) {
	s := filledState(t)
	s.Step = StepSend
	s, err := s.BeginSend()
	require.NoError(t, err)
	s = s.Advance(40)

	failed := s.Fail(errors.New("bridge down"))
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, StatusSending, failed.FailedStage)
	assert.Equal(t, "bridge down", failed.Message)
	assert.Equal(t, 0, failed.Progress)

	again, err := failed.BeginSend()
	require.NoError(t, err)
	assert.Equal(t, StatusSending, again.Status)
	assert.Empty(t, again.Message)
	assert.Empty(t, again.FailedStage)
}

func TestFieldEditability(t *testing.T) {
	s := NewState()
	s.Step = StepSend

	_, err := s.WithAmount("2")
	assert.ErrorIs(t, err, ErrFieldFrozen)
	_, err = s.WithTokenPair(types.PairETHUSDT)
	assert.ErrorIs(t, err, ErrFieldFrozen)
	_, err = s.WithRecipientAddress(validStellarAddress)
	assert.NoError(t, err)
	_, err = s.WithMemo("rent")
	assert.NoError(t, err)

	s.Step = StepConfirm
	_, err = s.WithRecipientAddress(validStellarAddress)
	assert.ErrorIs(t, err, ErrFieldFrozen)
	_, err = s.WithMemo("rent")
	assert.ErrorIs(t, err, ErrFieldFrozen)

	s = NewState()
	s.Status = StatusSwapping
	_, err = s.WithAmount("3")
	assert.ErrorIs(t, err, ErrFieldFrozen)

	_, err = NewState().WithTokenPair("BTC_USDC")
	assert.ErrorIs(t, err, ErrUnknownTokenPair)
}

func TestReset(t *testing.T) {
	s := filledState(t)
	s.Step = StepConfirm
	s.Status = StatusSuccess
	s.SwapReceipt = &types.Receipt{ID: "x"}
	s.Errors = ValidationErrors{FieldAmount: MsgInvalidAmount}

	assert.Equal(t, NewState(), s.Reset())
}

func TestState_JSONRoundTrip(t *testing.T) {
	s, err := filledState(t).BeginSwap(connected)
	require.NoError(t, err)
	s = s.Advance(40)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)
}
