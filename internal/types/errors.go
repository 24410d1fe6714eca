package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a rejected operation. Every error surfaced by the
// service layer carries exactly one of these codes; callers decide whether
// to retry.
type ErrorCode string

const (
	NotFound            ErrorCode = "NOT_FOUND"
	DuplicateVault      ErrorCode = "DUPLICATE_VAULT"
	Unauthorized        ErrorCode = "UNAUTHORIZED"
	InvalidAllocation   ErrorCode = "INVALID_ALLOCATION"
	InvalidAmount       ErrorCode = "INVALID_AMOUNT"
	InvalidPrivacyTier  ErrorCode = "INVALID_PRIVACY_TIER"
	InvalidDelay        ErrorCode = "INVALID_DELAY"
	InvalidGracePeriod  ErrorCode = "INVALID_GRACE_PERIOD"
	InvalidAccessLevel  ErrorCode = "INVALID_ACCESS_LEVEL"
	InvalidIndex        ErrorCode = "INVALID_INDEX"
	AlreadyTriggered    ErrorCode = "ALREADY_TRIGGERED"
	NotTriggered        ErrorCode = "NOT_TRIGGERED"
	NotEligible         ErrorCode = "NOT_ELIGIBLE"
	VaultNotFunded      ErrorCode = "VAULT_NOT_FUNDED"
	VaultLocked         ErrorCode = "VAULT_LOCKED"
	InsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	AlreadyClaimed      ErrorCode = "ALREADY_CLAIMED"
	BelowMinimum        ErrorCode = "BELOW_MINIMUM"
	TransferFailed      ErrorCode = "TRANSFER_FAILED"
	Paused              ErrorCode = "PAUSED"

	// InternalServiceError is reserved for infrastructure failures (db,
	// chain client) that are not part of the operation taxonomy.
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Error is the error type returned by every core operation.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a taxonomy code to an underlying infrastructure error.
func WrapError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// CodeOf extracts the taxonomy code from an error chain, or
// InternalServiceError when the chain carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalServiceError
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
