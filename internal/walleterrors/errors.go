// Package walleterrors implements the three-tier error taxonomy shared by
// every wallet operation: invalid input, recoverable runtime errors (keyed
// by a stable code so callers can branch on them), and permanent failures
// that require re-initializing the wallet.
package walleterrors

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode identifies a recoverable runtime failure. Callers are
// expected to retry, back off, or surface the code to the user; the wallet
// itself remains usable afterwards.
type RuntimeErrorCode string

const (
	CodeNetworkUnavailable       RuntimeErrorCode = "NetworkUnavailable"
	CodeRemoteServiceUnavailable RuntimeErrorCode = "RemoteServiceUnavailable"
	CodeNoRouteFound             RuntimeErrorCode = "NoRouteFound"
	CodeSwapAmountTooLow         RuntimeErrorCode = "SwapAmountTooLow"
	CodeSwapAmountTooHigh        RuntimeErrorCode = "SwapAmountTooHigh"
	CodeNodeUnavailable          RuntimeErrorCode = "NodeUnavailable"
	CodeObjectNotFound           RuntimeErrorCode = "ObjectNotFound"
	CodeOfferServiceUnavailable  RuntimeErrorCode = "OfferServiceUnavailable"
	CodeBackupNotFound           RuntimeErrorCode = "BackupNotFound"
	CodeBackupServiceUnavailable RuntimeErrorCode = "BackupServiceUnavailable"
	CodeAuthServiceUnavailable   RuntimeErrorCode = "AuthServiceUnavailable"
	CodeGenericError             RuntimeErrorCode = "GenericError"

	// Pay-specific codes, mirroring PayErrorCode/LnUrlPayErrorCode/
	// LnUrlWithdrawErrorCode in original_source/src/lightning/{bolt11,lnurl}.rs.
	CodePayingToSelf        RuntimeErrorCode = "PayingToSelf"
	CodePaymentFailed       RuntimeErrorCode = "PaymentFailed"
	CodePaymentTimeout      RuntimeErrorCode = "PaymentTimeout"
	CodeRouteTooExpensive   RuntimeErrorCode = "RouteTooExpensive"
	CodeServiceConnectivity RuntimeErrorCode = "ServiceConnectivity"
	CodeLnUrlServerError    RuntimeErrorCode = "LnUrlServerError"
)

// InvalidInput signals that the caller supplied a malformed or
// out-of-range argument. There is no retry that will help; the caller must
// change what it passed in.
type InvalidInput struct {
	Message string
}

func (e *InvalidInput) Error() string { return "invalid input: " + e.Message }

// NewInvalidInput builds an *InvalidInput with a formatted message.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInput{Message: fmt.Sprintf(format, args...)}
}

// RuntimeError is a recoverable failure keyed by a stable Code. The wallet
// stays usable; the caller decides whether/how to retry.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("runtime error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("runtime error [%s]: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// NewRuntimeError builds a *RuntimeError.
func NewRuntimeError(code RuntimeErrorCode, message string, cause error) error {
	return &RuntimeError{Code: code, Message: message, Cause: cause}
}

// PermanentFailure signals that the wallet has entered a state it cannot
// recover from without being re-initialized (e.g. corrupted local store).
type PermanentFailure struct {
	Message string
	Cause   error
}

func (e *PermanentFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("permanent failure: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("permanent failure: %s", e.Message)
}

func (e *PermanentFailure) Unwrap() error { return e.Cause }

// NewPermanentFailure builds a *PermanentFailure.
func NewPermanentFailure(message string, cause error) error {
	return &PermanentFailure{Message: message, Cause: cause}
}

// RuntimeErrorCodeOf extracts the Code of err if it is (or wraps) a
// *RuntimeError, and reports whether one was found.
func RuntimeErrorCodeOf(err error) (RuntimeErrorCode, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}
