package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationErrorIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"invalid amount", NewInvalidAmount("deposit_sol", "amount must be positive"), ErrInvalidAmount},
		{"invalid address", NewInvalidAddress("deposit_spl", "mint", nil), ErrInvalidAddress},
		{"seed too long", NewSeedTooLong("seed 1 is 40 bytes"), ErrSeedTooLong},
		{"derivation exhausted", NewDerivationExhausted(nil), ErrDerivationExhausted},
		{"submission", NewSubmissionError("withdraw_sol", context.DeadlineExceeded), ErrSubmission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))

			for _, other := range sentinels {
				if other != tt.sentinel {
					assert.False(t, errors.Is(tt.err, other))
				}
			}
		})
	}
}

func TestSubmissionErrorPreservesCause(t *testing.T) {
	code := int64(6001)
	cause := &ProgramError{Code: &code, Message: "custom program error: 0x1771"}
	err := NewSubmissionError("withdraw_spl", cause)

	assert.True(t, IsSubmissionError(err))
	assert.False(t, IsConstructionError(err))
	assert.Same(t, cause, errors.Unwrap(err))

	progErr, ok := ProgramErrorOf(err)
	require.True(t, ok)
	assert.Equal(t, int64(6001), *progErr.Code)
	assert.Contains(t, err.Error(), "withdraw_spl")
	assert.Contains(t, err.Error(), "program error 6001")
}

func TestForOperation(t *testing.T) {
	err := ForOperation(NewSeedTooLong("too long"), "deposit_spl")
	assert.Contains(t, err.Error(), "deposit_spl: [SEED_TOO_LONG]")

	// an operation already set is kept
	err = ForOperation(NewInvalidAmount("deposit_sol", "zero"), "other")
	assert.Contains(t, err.Error(), "deposit_sol:")

	plain := errors.New("plain")
	assert.Same(t, plain, ForOperation(plain, "x"))
}

func TestClassification(t *testing.T) {
	assert.True(t, IsConstructionError(NewInvalidAmount("", "")))
	assert.True(t, IsConstructionError(NewInvalidAddress("", "mint", nil)))
	assert.True(t, IsConstructionError(NewSeedTooLong("")))
	assert.False(t, IsConstructionError(NewDerivationExhausted(nil)))
	assert.True(t, IsFatal(NewDerivationExhausted(nil)))
	assert.False(t, IsFatal(errors.New("x")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.EqualError(t, Wrapf(errors.New("boom"), "step %d", 2), "step 2: boom")
}
