package cmd

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/pkg/flow"
	"swapbridge/pkg/provider"
	"swapbridge/pkg/types"
)

const testRecipient = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"

// scriptedStdin hands out one answer per read. before, if set, runs ahead of
// answer i being returned.
type scriptedStdin struct {
	answers []string
	next    int
	before  func(i int)
}

func (s *scriptedStdin) Read(p []byte) (int, error) {
	if s.next >= len(s.answers) {
		return 0, io.EOF
	}
	if s.before != nil {
		s.before(s.next)
	}
	n := copy(p, s.answers[s.next]+"\n")
	s.next++
	return n, nil
}

func useStdin(t *testing.T, r io.Reader) {
	t.Helper()
	prev := stdin
	stdin = bufio.NewReader(r)
	t.Cleanup(func() { stdin = prev })
}

// fastSimulation is simulatedProviders with millisecond timings
func fastSimulation(failStage string) provider.Set {
	sim := simulationConfig(failStage)
	sim.ConnectLatency = time.Millisecond
	sim.SwapTick = time.Millisecond
	sim.SendTick = time.Millisecond
	return simulatedProviders(sim)
}

func newTestRunner(t *testing.T, set provider.Set, interactive bool) *runner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	r := &runner{
		ctx:         ctx,
		spin:        spinner.New(spinner.CharSets[14], 100*time.Millisecond),
		interactive: interactive,
	}
	r.ctrl = flow.NewController(set, flow.WithLogger(quietLogger()), flow.WithObserver(r.observe))
	t.Cleanup(r.ctrl.Close)

	require.NoError(t, r.ctrl.SetAmount("1.5"))
	require.NoError(t, r.ctrl.SetTokenPair(types.PairETHUSDC))
	require.NoError(t, r.ctrl.SetRecipientAddress(testRecipient))
	return r
}

func TestRunnerExecute_RetryAfterSwapFailure(t *testing.T) {
	set := fastSimulation("swap")
	swapper := set.Swapper.(*provider.SimulatedSwapper)

	// the swap succeeds once the user agrees to retry
	input := &scriptedStdin{answers: []string{"y", "y"}}
	input.before = func(i int) {
		if i == 0 {
			swapper.Ticker.FailAt = 0
		}
	}
	useStdin(t, input)

	r := newTestRunner(t, set, true)
	require.NoError(t, r.execute())

	st := r.ctrl.State()
	assert.Equal(t, flow.StatusSuccess, st.Status)
	assert.Equal(t, flow.StepConfirm, st.Step)
	require.NotNil(t, st.SwapReceipt)
	require.NotNil(t, st.SendReceipt)
	assert.Equal(t, testRecipient, st.SendReceipt.Recipient)
	assert.Equal(t, 2, input.next)
}

func TestRunnerExecute_DeclineRetry(t *testing.T) {
	input := &scriptedStdin{answers: []string{"n"}}
	useStdin(t, input)

	r := newTestRunner(t, fastSimulation("connect"), true)
	err := r.execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), provider.ErrSimulatedFailure.Error())

	st := r.ctrl.State()
	assert.Equal(t, flow.StatusError, st.Status)
	assert.Equal(t, flow.StatusConnecting, st.FailedStage)
	assert.Empty(t, r.ctrl.Session().WalletAddress)
	assert.Equal(t, 1, input.next)
}

func TestRunnerExecute_DeclineSend(t *testing.T) {
	input := &scriptedStdin{answers: []string{"no"}}
	useStdin(t, input)

	r := newTestRunner(t, fastSimulation(""), true)
	require.NoError(t, r.execute())

	st := r.ctrl.State()
	assert.Equal(t, flow.StepSend, st.Step)
	assert.Equal(t, flow.StatusIdle, st.Status)
	assert.NotNil(t, st.SwapReceipt)
	assert.Nil(t, st.SendReceipt)
	assert.Equal(t, 1, input.next)
}

func TestRunnerExecute_NonInteractiveFailure(t *testing.T) {
	useStdin(t, strings.NewReader("y\ny\n"))

	r := newTestRunner(t, fastSimulation("send"), false)
	err := r.execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), testRecipient)

	st := r.ctrl.State()
	assert.Equal(t, flow.StatusError, st.Status)
	assert.Equal(t, flow.StatusSending, st.FailedStage)
	assert.NotNil(t, st.SwapReceipt)

	// nothing was read from stdin
	rest, _ := stdin.ReadString('\n')
	assert.Equal(t, "y\n", rest)
}
