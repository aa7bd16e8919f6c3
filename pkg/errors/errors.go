package errors

import (
	"errors"
	"fmt"
)

// Calculation errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnconfiguredLoan    = errors.New("loan terms not configured")
	ErrInstallmentNotFound = errors.New("installment not found")
)

// Domain errors
var (
	ErrLoanNotFound           = errors.New("loan not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")
	ErrTermsAlreadyConfigured = errors.New("loan terms already configured")
	ErrLoanNotApproved        = errors.New("loan is not approved")
	ErrLoanLocked             = errors.New("loan is locked by another operation")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeUnconfiguredLoan       = "UNCONFIGURED_LOAN"
	ErrCodeInstallmentNotFound    = "INSTALLMENT_NOT_FOUND"
	ErrCodeLoanNotFound           = "LOAN_NOT_FOUND"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeInstallmentAlreadyPaid = "INSTALLMENT_ALREADY_PAID"
	ErrCodeTermsAlreadyConfigured = "TERMS_ALREADY_CONFIGURED"
	ErrCodeLoanNotApproved        = "LOAN_NOT_APPROVED"
	ErrCodeLoanLocked             = "LOAN_LOCKED"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodeCacheError             = "CACHE_ERROR"
)

// Code returns the business code carried by err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapInvalidInput(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInput,
		fmt.Sprintf(format, args...),
		ErrInvalidInput,
	)
}

func WrapUnconfiguredLoan(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnconfiguredLoan,
		fmt.Sprintf("Loan with ID %s has no interest terms configured", loanID),
		ErrUnconfiguredLoan,
	)
}

func WrapInstallmentNotFound(installment, numberOfPayments int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %d is outside 1..%d", installment, numberOfPayments),
		ErrInstallmentNotFound,
	)
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapInstallmentAlreadyPaid(loanID string, installment int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentAlreadyPaid,
		fmt.Sprintf("Installment %d of loan %s has already been paid", installment, loanID),
		ErrInstallmentAlreadyPaid,
	)
}

func WrapTermsAlreadyConfigured(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTermsAlreadyConfigured,
		fmt.Sprintf("Loan with ID %s already has interest terms", loanID),
		ErrTermsAlreadyConfigured,
	)
}

func WrapLoanNotApproved(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotApproved,
		fmt.Sprintf("Loan with ID %s is %s, not Approved", loanID, status),
		ErrLoanNotApproved,
	)
}

func WrapLoanLocked(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanLocked,
		fmt.Sprintf("Loan with ID %s is being updated, retry shortly", loanID),
		ErrLoanLocked,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
