// Package x402 implements a Solana-settled payer agent for the x402 HTTP
// payment protocol: it turns a 402 challenge into a signed SPL token transfer
// and retries the original request carrying the payment.
package x402

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a payment attempt failed.
type ErrorKind string

const (
	// ErrKindTransport covers HTTP or RPC collaborator failures.
	ErrKindTransport ErrorKind = "transport"
	// ErrKindChallengeParse covers a 402 body missing required fields or not JSON.
	ErrKindChallengeParse ErrorKind = "challenge_parse"
	// ErrKindFacilitatorUnsupported covers a /supported response lacking the required network tuple.
	ErrKindFacilitatorUnsupported ErrorKind = "facilitator_unsupported"
	// ErrKindMintUnsupported covers a mint owned by neither the classic nor 2022 token program.
	ErrKindMintUnsupported ErrorKind = "mint_unsupported"
	// ErrKindBuildOverflow covers an output buffer too small at a serialization step.
	ErrKindBuildOverflow ErrorKind = "build_overflow"
	// ErrKindAmountInvalid covers a maxAmountRequired that fails to parse as a non-zero u64.
	ErrKindAmountInvalid ErrorKind = "amount_invalid"
	// ErrKindCrypto covers a signing or curve-test failure.
	ErrKindCrypto ErrorKind = "crypto"
	// ErrKindPaymentRejected covers a retried request returning 402 or a non-2xx status.
	ErrKindPaymentRejected ErrorKind = "payment_rejected"
	// ErrKindReceiptDecode covers a settlement header present but undecodable.
	ErrKindReceiptDecode ErrorKind = "receipt_decode"
)

// PaymentError is the typed error surfaced by the driver at any FAILED(*) state.
type PaymentError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("x402: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("x402: %s: %s", e.Kind, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError constructs a PaymentError of the given kind.
func NewPaymentError(kind ErrorKind, message string, cause error) *PaymentError {
	return &PaymentError{Kind: kind, Message: message, Err: cause}
}

// AsPaymentError reports whether err is (or wraps) a *PaymentError, and returns it.
func AsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Sentinel errors for conditions that are not protocol-level payment failures.
var (
	// ErrNoFeePayer indicates neither the 402 body nor the facilitator probe yielded a fee payer.
	ErrNoFeePayer = errors.New("x402: no fee payer available")
	// ErrUnknownNetwork indicates a network tag outside the known registry.
	ErrUnknownNetwork = errors.New("x402: unknown network")
)
