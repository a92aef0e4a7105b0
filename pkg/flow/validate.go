package flow

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field names used as keys in ValidationErrors
const (
	FieldAmount           = "amount"
	FieldRecipientAddress = "recipientAddress"
)

// StellarAddressLength is the length of an encoded Stellar account ID in
// characters. Only the length is checked; the strkey checksum is not verified.
const StellarAddressLength = 56

const (
	MsgInvalidAmount    = "Please enter a valid ETH amount"
	MsgRecipientMissing = "Stellar address is required"
	MsgRecipientFormat  = "Invalid Stellar address format"
)

// ValidationErrors maps a field name to its message
type ValidationErrors map[string]string

// Empty reports whether no field failed validation
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Validate checks the form fields and returns every violation found
func Validate(fields Fields) ValidationErrors {
	errs := ValidationErrors{}

	if !validAmount(fields.Amount) {
		errs[FieldAmount] = MsgInvalidAmount
	}

	switch {
	case fields.RecipientAddress == "":
		errs[FieldRecipientAddress] = MsgRecipientMissing
	case utf8.RuneCountInString(fields.RecipientAddress) < StellarAddressLength:
		errs[FieldRecipientAddress] = MsgRecipientFormat
	}

	return errs
}

func validAmount(amount string) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return false
	}
	return value > 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}
