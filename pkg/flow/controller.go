// Package flow implements the transaction flow controller: a three step
// swap, send and confirm state machine whose side effects are delegated to
// injected providers.
//
// Every provider call runs on its own goroutine with a cancellable context.
// Starting a new operation, going back or resetting cancels the operation in
// flight, and callbacks from a superseded operation are discarded, so a late
// progress tick can never touch freshly reset state.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"swapbridge/pkg/provider"
	"swapbridge/pkg/types"
)

// Snapshot is a copy of everything a renderer needs
type Snapshot struct {
	Session Session `json:"session"`
	State   State   `json:"state"`
}

// Controller owns the session and flow state of one form instance
type Controller struct {
	mu       sync.Mutex
	session  Session
	state    State
	wallet   provider.Wallet
	swapper  provider.Swapper
	bridge   provider.Bridge
	notifier provider.Notifier
	log      logrus.FieldLogger
	observer func(Snapshot)

	// gen identifies the operation allowed to write state; cancel and done
	// belong to that operation
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger used for state transitions
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn runs with the controller locked and must not call back into it.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// NewController creates a disconnected controller at the swap step
func NewController(providers provider.Set, opts ...Option) *Controller {
	c := &Controller{
		state:    NewState(),
		wallet:   providers.Wallet,
		swapper:  providers.Swapper,
		bridge:   providers.Bridge,
		notifier: providers.Notifier,
		log:      logrus.StandardLogger(),
	}
	if c.notifier == nil {
		c.notifier = provider.Discard{}
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("pkg", "flow.Controller")
	return c
}

// Snapshot returns a deep copy of the current session and state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() Snapshot {
	st := c.state.clone()
	if st.SwapReceipt != nil {
		r := *st.SwapReceipt
		st.SwapReceipt = &r
	}
	if st.SendReceipt != nil {
		r := *st.SendReceipt
		st.SendReceipt = &r
	}
	return Snapshot{Session: c.session, State: st}
}

// State returns a copy of the flow state
func (c *Controller) State() State {
	return c.Snapshot().State
}

// Session returns the wallet session
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// set replaces the state; the caller holds mu
func (c *Controller) set(next State) {
	prev := c.state
	c.state = next
	if prev.Step != next.Step || prev.Status != next.Status {
		c.log.WithFields(logrus.Fields{
			"step":   next.Step,
			"status": next.Status,
			"from":   fmt.Sprintf("%s/%s", prev.Step, prev.Status),
		}).Debug("transition")
	}
	if c.observer != nil {
		c.observer(c.snapshot())
	}
}

// begin supersedes whatever is in flight and registers a new operation
func (c *Controller) begin(parent context.Context) (context.Context, uint64, chan struct{}) {
	c.supersede()
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.done = make(chan struct{})
	return ctx, c.gen, c.done
}

// supersede cancels the operation in flight and invalidates its callbacks
func (c *Controller) supersede() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.done = nil
	c.gen++
}

// finish reports whether gen still owns the state and releases its context
func (c *Controller) finish(gen uint64) bool {
	if gen != c.gen {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return true
}

func (c *Controller) progressFor(gen uint64) provider.ProgressFunc {
	return func(percent int) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if gen != c.gen {
			return
		}
		next := c.state.Advance(percent)
		if next.Progress != c.state.Progress {
			c.set(next)
		}
	}
}

func (c *Controller) fail(title string, err error) {
	c.log.WithError(err).WithField("stage", c.state.Status).Warn("operation failed")
	c.set(c.state.Fail(err))
	c.notifier.Notify(title, err.Error())
}

// Connect starts connecting the wallet. It returns once the operation is
// started; completion is observed through Wait, Snapshot or the observer.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(ctx)
}

func (c *Controller) connect(ctx context.Context) error {
	if c.wallet == nil {
		return errors.New("no wallet provider configured")
	}

	next, err := c.state.BeginConnect(c.session)
	if err != nil {
		return err
	}
	c.set(next)

	opCtx, gen, done := c.begin(ctx)
	go c.runConnect(opCtx, gen, done)
	return nil
}

func (c *Controller) runConnect(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	addr, err := c.wallet.Connect(ctx)
	if err == nil && addr == "" {
		err = errors.New("wallet returned an empty address")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.finish(gen) {
		return
	}
	if err != nil {
		c.fail("Connection Failed", fmt.Errorf("failed to connect wallet: %w", err))
		return
	}

	c.session = Session{Connected: true, WalletAddress: addr}
	c.set(c.state.CompleteConnect())
	c.log.WithField("address", addr).Info("wallet connected")
	c.notifier.Notify("Wallet Connected", fmt.Sprintf("Wallet %s connected successfully", addr))
}

// StartSwap validates the form and starts the swap. Validation errors are
// stored in the state and ErrValidation is returned.
func (c *Controller) StartSwap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startSwap(ctx)
}

func (c *Controller) startSwap(ctx context.Context) error {
	if c.swapper == nil {
		return errors.New("no swap provider configured")
	}

	next, err := c.state.BeginSwap(c.session)
	if errors.Is(err, ErrValidation) {
		c.set(next)
		return err
	}
	if err != nil {
		return err
	}
	c.set(next)

	req := types.SwapRequest{
		Amount: strings.TrimSpace(next.Fields.Amount),
		Pair:   next.Fields.TokenPair,
		Owner:  c.session.WalletAddress,
	}

	opCtx, gen, done := c.begin(ctx)
	go c.runSwap(opCtx, gen, done, req)
	return nil
}

func (c *Controller) runSwap(ctx context.Context, gen uint64, done chan struct{}, req types.SwapRequest) {
	defer close(done)

	receipt, err := c.swapper.Swap(ctx, req, c.progressFor(gen))

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.finish(gen) {
		return
	}
	if err != nil {
		c.fail("Swap Failed", err)
		return
	}

	c.set(c.state.CompleteSwap(receipt))
	c.log.WithFields(logrus.Fields{"amount": req.Amount, "pair": req.Pair}).Info("swap completed")
	c.notifier.Notify("Swap Successful", fmt.Sprintf("%s %s converted to %s", req.Amount, req.Pair.Source(), req.Pair.Dest()))
}

// StartSend starts sending the swapped tokens to the recipient
func (c *Controller) StartSend(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startSend(ctx)
}

func (c *Controller) startSend(ctx context.Context) error {
	if c.bridge == nil {
		return errors.New("no bridge provider configured")
	}

	next, err := c.state.BeginSend()
	if err != nil {
		return err
	}
	c.set(next)

	req := types.SendRequest{
		Amount:        strings.TrimSpace(next.Fields.Amount),
		Token:         next.Fields.TokenPair.Dest(),
		RecipientAddr: next.Fields.RecipientAddress,
		Memo:          next.Fields.Memo,
		Owner:         c.session.WalletAddress,
	}
	// send what the swap actually produced when the provider reported it
	if r := next.SwapReceipt; r != nil && r.AmountOut != "" {
		req.Amount = r.AmountOut
	}

	opCtx, gen, done := c.begin(ctx)
	go c.runSend(opCtx, gen, done, req)
	return nil
}

func (c *Controller) runSend(ctx context.Context, gen uint64, done chan struct{}, req types.SendRequest) {
	defer close(done)

	receipt, err := c.bridge.Send(ctx, req, c.progressFor(gen))

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.finish(gen) {
		return
	}
	if err != nil {
		c.fail("Send Failed", err)
		return
	}

	c.set(c.state.CompleteSend(receipt))
	c.log.WithField("recipient", req.RecipientAddr).Info("send completed")
	c.notifier.Notify("Transaction Complete", fmt.Sprintf("%s sent to Stellar network successfully", req.Token))
}

// Retry re-runs the stage that failed
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusError {
		return ErrNothingToRetry
	}

	switch c.state.FailedStage {
	case StatusConnecting:
		return c.connect(ctx)
	case StatusSwapping:
		return c.startSwap(ctx)
	case StatusSending:
		return c.startSend(ctx)
	default:
		return ErrNothingToRetry
	}
}

// GoBack retreats one step. It is rejected while swapping or sending.
func (c *Controller) GoBack() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Back()
	if err != nil {
		return err
	}
	if next.Step == c.state.Step {
		return nil
	}

	c.supersede()
	c.set(next)
	return nil
}

// Reset cancels anything in flight and clears the form. The wallet session
// is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersede()
	c.set(c.state.Reset())
}

// Close cancels the operation in flight, if any
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersede()
}

// Wait blocks until the operation in flight settles or ctx ends
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetAmount edits the amount field
func (c *Controller) SetAmount(amount string) error {
	return c.edit(func(s State) (State, error) { return s.WithAmount(amount) })
}

// SetTokenPair edits the token pair field
func (c *Controller) SetTokenPair(pair types.TokenPair) error {
	return c.edit(func(s State) (State, error) { return s.WithTokenPair(pair) })
}

// SetRecipientAddress edits the recipient field
func (c *Controller) SetRecipientAddress(addr string) error {
	return c.edit(func(s State) (State, error) { return s.WithRecipientAddress(addr) })
}

// SetMemo edits the memo field
func (c *Controller) SetMemo(memo string) error {
	return c.edit(func(s State) (State, error) { return s.WithMemo(memo) })
}

func (c *Controller) edit(fn func(State) (State, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.state)
	if err != nil {
		return err
	}
	c.set(next)
	return nil
}
