package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeInvalidAmount indicates a deposit amount outside (0, MaxUint64]
	ErrCodeInvalidAmount ErrorCode = "INVALID_AMOUNT"

	// ErrCodeInvalidAddress indicates an address that is not 32 decodable bytes
	ErrCodeInvalidAddress ErrorCode = "INVALID_ADDRESS"

	// ErrCodeSeedTooLong indicates a PDA seed over the derivation limits
	ErrCodeSeedTooLong ErrorCode = "SEED_TOO_LONG"

	// ErrCodeDerivationExhausted indicates no bump produced an off-curve address
	ErrCodeDerivationExhausted ErrorCode = "DERIVATION_EXHAUSTED"

	// ErrCodeSubmission indicates a network, signature or program failure
	ErrCodeSubmission ErrorCode = "SUBMISSION"
)

// Sentinels usable with errors.Is against any *OperationError of the same code.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrSeedTooLong         = errors.New("seed too long")
	ErrDerivationExhausted = errors.New("derivation exhausted")
	ErrSubmission          = errors.New("submission failed")
)

var sentinels = map[ErrorCode]error{
	ErrCodeInvalidAmount:       ErrInvalidAmount,
	ErrCodeInvalidAddress:      ErrInvalidAddress,
	ErrCodeSeedTooLong:         ErrSeedTooLong,
	ErrCodeDerivationExhausted: ErrDerivationExhausted,
	ErrCodeSubmission:          ErrSubmission,
}

// OperationError is the error returned by every staking operation.
type OperationError struct {
	Code      ErrorCode `json:"code"`
	Operation string    `json:"operation,omitempty"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
}

// NewOperationError creates a new OperationError
func NewOperationError(code ErrorCode, operation, message string, cause error) *OperationError {
	return &OperationError{
		Code:      code,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// Error implements the error interface
func (e *OperationError) Error() string {
	var b strings.Builder
	if e.Operation != "" {
		fmt.Fprintf(&b, "%s: ", e.Operation)
	}
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel registered for the error's code.
func (e *OperationError) Is(target error) bool {
	if t, ok := target.(*OperationError); ok {
		return t.Code == e.Code
	}
	return sentinels[e.Code] == target
}

// WithOperation sets the operation name if the error does not carry one yet
func (e *OperationError) WithOperation(operation string) *OperationError {
	if e.Operation == "" {
		e.Operation = operation
	}
	return e
}

// ProgramError is an on-chain rejection reported by the cluster.
// Code is set when the program returned a custom error number.
type ProgramError struct {
	Code    *int64   `json:"code,omitempty"`
	Message string   `json:"message"`
	Logs    []string `json:"logs,omitempty"`
}

func (e *ProgramError) Error() string {
	if e.Code != nil {
		return fmt.Sprintf("program error %d: %s", *e.Code, e.Message)
	}
	return "program error: " + e.Message
}

// Common error constructors

// NewInvalidAmount creates an invalid amount error
func NewInvalidAmount(operation, message string) *OperationError {
	return NewOperationError(ErrCodeInvalidAmount, operation, message, nil)
}

// NewInvalidAddress creates an invalid address error
func NewInvalidAddress(operation, field string, cause error) *OperationError {
	return NewOperationError(ErrCodeInvalidAddress, operation, fmt.Sprintf("%s is not a valid address", field), cause)
}

// NewSeedTooLong creates a seed length error
func NewSeedTooLong(message string) *OperationError {
	return NewOperationError(ErrCodeSeedTooLong, "", message, nil)
}

// NewDerivationExhausted creates a derivation exhaustion error
func NewDerivationExhausted(cause error) *OperationError {
	return NewOperationError(ErrCodeDerivationExhausted, "", "no bump yields a valid program address", cause)
}

// NewSubmissionError creates a submission error wrapping cause
func NewSubmissionError(operation string, cause error) *OperationError {
	return NewOperationError(ErrCodeSubmission, operation, "transaction submission failed", cause)
}
