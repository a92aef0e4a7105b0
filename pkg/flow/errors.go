package flow

import "errors"

var (
	ErrNotConnected     = errors.New("wallet not connected")
	ErrAlreadyConnected = errors.New("wallet already connected")
	ErrBusy             = errors.New("another operation is in progress")
	ErrWrongStep        = errors.New("operation not allowed at this step")
	ErrValidation       = errors.New("form has validation errors")
	ErrFieldFrozen      = errors.New("field is not editable")
	ErrUnknownTokenPair = errors.New("unknown token pair")
	ErrNothingToRetry   = errors.New("no failed stage to retry")
)
