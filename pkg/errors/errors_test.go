package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      *BusinessError
		sentinel error
		code     string
	}{
		{"invalid input", WrapInvalidInput("principal %s is negative", "-1"), ErrInvalidInput, ErrCodeInvalidInput},
		{"unconfigured loan", WrapUnconfiguredLoan("abc"), ErrUnconfiguredLoan, ErrCodeUnconfiguredLoan},
		{"installment not found", WrapInstallmentNotFound(13, 12), ErrInstallmentNotFound, ErrCodeInstallmentNotFound},
		{"already paid", WrapInstallmentAlreadyPaid("abc", 2), ErrInstallmentAlreadyPaid, ErrCodeInstallmentAlreadyPaid},
		{"locked", WrapLoanLocked("abc"), ErrLoanLocked, ErrCodeLoanLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.code, Code(wrapped))
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapDatabaseError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DATABASE_ERROR: database operation failed (connection refused)", err.Error())
	assert.Equal(t, "", Code(cause))
}
