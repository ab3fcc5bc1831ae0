package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ForOperation tags a construction error with the operation that raised it.
// Errors that are not *OperationError are returned unchanged.
func ForOperation(err error, operation string) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		opErr.WithOperation(operation)
	}
	return err
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// CodeOf returns the code of the first *OperationError in the chain, or "".
func CodeOf(err error) ErrorCode {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Code
	}
	return ""
}

// IsConstructionError reports whether err was raised before any network I/O
// and can be fixed by correcting the input.
func IsConstructionError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidAmount, ErrCodeInvalidAddress, ErrCodeSeedTooLong:
		return true
	default:
		return false
	}
}

// IsSubmissionError reports whether err came from the submission path.
func IsSubmissionError(err error) bool {
	return CodeOf(err) == ErrCodeSubmission
}

// IsFatal reports whether err indicates a derivation-scheme anomaly.
func IsFatal(err error) bool {
	return CodeOf(err) == ErrCodeDerivationExhausted
}

// ProgramErrorOf extracts an on-chain rejection from err, if any.
func ProgramErrorOf(err error) (*ProgramError, bool) {
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return progErr, true
	}
	return nil, false
}
