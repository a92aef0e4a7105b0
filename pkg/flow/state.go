package flow

import (
	"fmt"

	"swapbridge/pkg/types"
)

// Step is one of the three sequential phases of the flow
type Step string

const (
	StepSwap    Step = "swap"
	StepSend    Step = "send"
	StepConfirm Step = "confirm"
)

// Status is the execution state of the active step
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusSwapping   Status = "swapping"
	StatusSending    Status = "sending"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Busy reports whether a provider call is in flight
func (s Status) Busy() bool {
	return s == StatusConnecting || s == StatusSwapping || s == StatusSending
}

// Session tracks the wallet connection
type Session struct {
	Connected     bool   `json:"connected"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// Fields holds the editable form values
type Fields struct {
	Amount           string          `json:"amount"`
	TokenPair        types.TokenPair `json:"token_pair"`
	RecipientAddress string          `json:"recipient_address"`
	Memo             string          `json:"memo,omitempty"`
}

// State is the flow state owned by a Controller. Transition methods never
// mutate the receiver; they return the next state.
type State struct {
	Step     Step             `json:"step"`
	Status   Status           `json:"status"`
	Progress int              `json:"progress"`
	Fields   Fields           `json:"fields"`
	Errors   ValidationErrors `json:"errors"`

	// Message and FailedStage are only set while Status is StatusError
	Message     string `json:"message,omitempty"`
	FailedStage Status `json:"failed_stage,omitempty"`

	SwapReceipt *types.Receipt `json:"swap_receipt,omitempty"`
	SendReceipt *types.Receipt `json:"send_receipt,omitempty"`
}

// NewState returns the state of a freshly opened form
func NewState() State {
	return State{
		Step:   StepSwap,
		Status: StatusIdle,
		Fields: Fields{TokenPair: types.DefaultPair},
		Errors: ValidationErrors{},
	}
}

// clone copies the state so the errors map is never shared
func (s State) clone() State {
	next := s
	next.Errors = make(ValidationErrors, len(s.Errors))
	for k, v := range s.Errors {
		next.Errors[k] = v
	}
	return next
}

func (s State) clearFailure() State {
	s.Message = ""
	s.FailedStage = ""
	return s
}

// BeginConnect moves to StatusConnecting
func (s State) BeginConnect(sess Session) (State, error) {
	if sess.Connected {
		return s, ErrAlreadyConnected
	}
	if s.Status.Busy() {
		return s, fmt.Errorf("%w: status is %s", ErrBusy, s.Status)
	}

	next := s.clone().clearFailure()
	next.Status = StatusConnecting
	next.Progress = 0
	return next, nil
}

// CompleteConnect returns the status to idle once the wallet answered
func (s State) CompleteConnect() State {
	next := s.clone()
	next.Status = StatusIdle
	next.Progress = 0
	return next
}

// BeginSwap validates the form and moves to StatusSwapping. When validation
// fails the returned state carries the new errors and ErrValidation is returned.
func (s State) BeginSwap(sess Session) (State, error) {
	if !sess.Connected {
		return s, ErrNotConnected
	}
	if s.Step != StepSwap {
		return s, fmt.Errorf("%w: swap requires step %s, at %s", ErrWrongStep, StepSwap, s.Step)
	}
	if s.Status != StatusIdle && !(s.Status == StatusError && s.FailedStage == StatusSwapping) {
		return s, fmt.Errorf("%w: status is %s", ErrBusy, s.Status)
	}

	next := s.clone()
	next.Errors = Validate(s.Fields)
	if !next.Errors.Empty() {
		return next, ErrValidation
	}

	next = next.clearFailure()
	next.Status = StatusSwapping
	next.Progress = 0
	return next, nil
}

// CompleteSwap records the receipt and advances to the send step
func (s State) CompleteSwap(receipt *types.Receipt) State {
	next := s.clone()
	next.Status = StatusIdle
	next.Step = StepSend
	next.Progress = 0
	next.SwapReceipt = receipt
	return next
}

// BeginSend moves to the confirm step with StatusSending. A send that failed
// at the confirm step may be started again.
func (s State) BeginSend() (State, error) {
	retrying := s.Step == StepConfirm && s.Status == StatusError && s.FailedStage == StatusSending
	if !retrying {
		if s.Step != StepSend {
			return s, fmt.Errorf("%w: send requires step %s, at %s", ErrWrongStep, StepSend, s.Step)
		}
		if s.Status != StatusIdle {
			return s, fmt.Errorf("%w: status is %s", ErrBusy, s.Status)
		}
	}

	next := s.clone().clearFailure()
	next.Step = StepConfirm
	next.Status = StatusSending
	next.Progress = 0
	return next, nil
}

// CompleteSend records the receipt and finishes the flow
func (s State) CompleteSend(receipt *types.Receipt) State {
	next := s.clone()
	next.Status = StatusSuccess
	next.Progress = 0
	next.SendReceipt = receipt
	return next
}

// Advance applies a progress report. Reports are clamped to 0..100 and a
// report lower than the current value is ignored.
func (s State) Advance(percent int) State {
	if s.Status != StatusSwapping && s.Status != StatusSending {
		return s
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= s.Progress {
		return s
	}

	next := s.clone()
	next.Progress = percent
	return next
}

// Fail moves an in-flight stage to StatusError
func (s State) Fail(err error) State {
	next := s.clone()
	next.FailedStage = s.Status
	next.Status = StatusError
	next.Progress = 0
	next.Message = err.Error()
	return next
}

// Back retreats one step
func (s State) Back() (State, error) {
	if s.Status == StatusSwapping || s.Status == StatusSending {
		return s, fmt.Errorf("%w: cannot go back while %s", ErrBusy, s.Status)
	}

	next := s.clone().clearFailure()
	switch s.Step {
	case StepSend:
		next.Step = StepSwap
	case StepConfirm:
		next.Step = StepSend
	default:
		return s, nil
	}
	next.Status = StatusIdle
	next.Progress = 0
	return next, nil
}

// Reset returns to the initial state
func (s State) Reset() State {
	return NewState()
}

func (s State) editable(field string) error {
	if s.Status.Busy() {
		return fmt.Errorf("%w: %s cannot change while %s", ErrFieldFrozen, field, s.Status)
	}

	switch s.Step {
	case StepSwap:
		return nil
	case StepSend:
		if field == FieldRecipientAddress || field == fieldMemo {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot change at step %s", ErrFieldFrozen, field, s.Step)
}

const (
	fieldTokenPair = "tokenPair"
	fieldMemo      = "memo"
)

// WithAmount sets the amount field
func (s State) WithAmount(amount string) (State, error) {
	if err := s.editable(FieldAmount); err != nil {
		return s, err
	}
	next := s.clone()
	next.Fields.Amount = amount
	return next, nil
}

// WithTokenPair sets the token pair field
func (s State) WithTokenPair(pair types.TokenPair) (State, error) {
	if !pair.Valid() {
		return s, fmt.Errorf("%w: %s", ErrUnknownTokenPair, pair)
	}
	if err := s.editable(fieldTokenPair); err != nil {
		return s, err
	}
	next := s.clone()
	next.Fields.TokenPair = pair
	return next, nil
}

// WithRecipientAddress sets the recipient field
func (s State) WithRecipientAddress(addr string) (State, error) {
	if err := s.editable(FieldRecipientAddress); err != nil {
		return s, err
	}
	next := s.clone()
	next.Fields.RecipientAddress = addr
	return next, nil
}

// WithMemo sets the memo field
func (s State) WithMemo(memo string) (State, error) {
	if err := s.editable(fieldMemo); err != nil {
		return s, err
	}
	next := s.clone()
	next.Fields.Memo = memo
	return next, nil
}
