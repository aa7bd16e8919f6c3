package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-tracker/internal/domain"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, request)
	return loan(args)
}

func (m *MockLoanService) UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, status)
	return loan(args)
}

func (m *MockLoanService) ConfigureTerms(ctx context.Context, loanID uuid.UUID, request *domain.ConfigureTermsRequest) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, request)
	return loan(args)
}

func (m *MockLoanService) ListLoans(ctx context.Context, configuredOnly bool) ([]*domain.Loan, error) {
	args := m.Called(ctx, configuredOnly)
	return loans(args)
}

func (m *MockLoanService) ListApprovedUnconfigured(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	return loans(args)
}

func (m *MockLoanService) ListUserLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	return loans(args)
}

func (m *MockLoanService) ListUserConfiguredLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	return loans(args)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, loanID uuid.UUID, asOf *time.Time) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLoanService) GetUnpaidBalance(ctx context.Context, loanID uuid.UUID) (*domain.UnpaidBalanceResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnpaidBalanceResponse), args.Error(1)
}

func (m *MockLoanService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	args := m.Called(ctx, request)
	return recordPaymentResponse(args)
}

func (m *MockLoanService) RecordGCashPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	args := m.Called(ctx, request)
	return recordPaymentResponse(args)
}

func (m *MockLoanService) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockLoanService) ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, loanID)
	return payments(args)
}

func (m *MockLoanService) ListUserPayments(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, userID)
	return payments(args)
}

// NewMockLoanService creates a new mock loan service instance
func NewMockLoanService() *MockLoanService {
	return &MockLoanService{}
}

func loan(args mock.Arguments) (*domain.Loan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func recordPaymentResponse(args mock.Arguments) (*domain.RecordPaymentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordPaymentResponse), args.Error(1)
}
