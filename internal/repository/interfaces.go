package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/loan-tracker/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID, returning sql.ErrNoRows when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// UpdateStatus updates the lifecycle status of a loan
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error

	// UpdateTerms attaches configured interest terms to a loan
	UpdateTerms(ctx context.Context, id uuid.UUID, terms *domain.LoanTerms) error

	// List retrieves all loans, newest first, optionally only those with terms
	List(ctx context.Context, configuredOnly bool) ([]*domain.Loan, error)

	// ListApprovedUnconfigured retrieves approved loans still waiting for interest terms
	ListApprovedUnconfigured(ctx context.Context) ([]*domain.Loan, error)

	// ListByUser retrieves a borrower's loans, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, configuredOnly bool) ([]*domain.Loan, error)

	// ListActive retrieves approved loans that have terms configured
	ListActive(ctx context.Context) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record. A second payment for the same
	// installment fails with errors.ErrInstallmentAlreadyPaid.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment, returning sql.ErrNoRows when absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByLoanAndInstallment retrieves the payment recorded for one installment
	GetByLoanAndInstallment(ctx context.Context, loanID uuid.UUID, installment int) (*domain.Payment, error)

	// ListByLoan retrieves all payments for a loan ordered by installment
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// ListByUser retrieves payments across a borrower's loans, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error)

	// UpdateStatus updates the verification status and method of a payment
	UpdateStatus(ctx context.Context, payment *domain.Payment) error
}
