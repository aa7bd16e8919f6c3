package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/loan-tracker/internal/amortization"
	"github.com/segyhp/loan-tracker/internal/config"
	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/lock"
	"github.com/segyhp/loan-tracker/internal/metrics"
	"github.com/segyhp/loan-tracker/internal/repository"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/logger"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

type LoanService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	locker      lock.Locker
	config      *config.Config
	logger      logger.Logger
	now         func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	locker lock.Locker,
	config *config.Config,
	log logger.Logger,
) *LoanService {
	return &LoanService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		locker:      locker,
		config:      config,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock replaces the time source used as "now" for schedule derivation.
func (s *LoanService) WithClock(now func() time.Time) *LoanService {
	s.now = now
	return s
}

// CreateLoan registers a loan application. Terms are attached later by ConfigureTerms.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	minAmount, maxAmount := s.config.GetMinLoanAmount(), s.config.GetMaxLoanAmount()
	if request.Amount.LessThan(minAmount) || request.Amount.GreaterThan(maxAmount) {
		return nil, customError.WrapInvalidInput("amount %s must be between %s and %s", request.Amount, minAmount, maxAmount)
	}
	if !utils.HasAtMostPlaces(request.Amount, utils.MoneyPlaces) {
		return nil, customError.WrapInvalidInput("amount %s has more than %d decimal places", request.Amount, utils.MoneyPlaces)
	}
	if request.TermMonths < 1 {
		return nil, customError.WrapInvalidInput("term of %d months must be at least 1", request.TermMonths)
	}
	if strings.TrimSpace(request.Purpose) == "" {
		return nil, customError.WrapInvalidInput("purpose is required")
	}

	now := s.now()
	loan := &domain.Loan{
		ID:                 uuid.New(),
		UserID:             request.UserID,
		Amount:             request.Amount,
		Purpose:            strings.TrimSpace(request.Purpose),
		TermMonths:         request.TermMonths,
		RepaymentFrequency: domain.ParseRepaymentFrequency(request.RepaymentFrequency),
		Status:             domain.LoanStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan created", map[string]interface{}{
		"loan_id":   loan.ID.String(),
		"user_id":   loan.UserID.String(),
		"amount":    loan.Amount.String(),
		"frequency": string(loan.RepaymentFrequency),
	})

	return loan, nil
}

// UpdateLoanStatus moves a loan to Approved, Rejected or Cancelled.
func (s *LoanService) UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.Loan, error) {
	switch status {
	case domain.LoanStatusApproved, domain.LoanStatusRejected, domain.LoanStatusCancelled:
	default:
		return nil, customError.WrapInvalidInput("status %q is not one of Approved, Rejected, Cancelled", status)
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := s.LoanRepo.UpdateStatus(ctx, loanID, status); err != nil {
		return nil, s.wrapLoanError(loanID, err)
	}

	s.logger.Info("loan status updated", map[string]interface{}{
		"loan_id": loanID.String(),
		"from":    string(loan.Status),
		"to":      string(status),
	})

	loan.Status = status
	loan.UpdatedAt = s.now()
	return loan, nil
}

// ConfigureTerms computes and attaches interest terms to an approved loan. Terms are set once.
func (s *LoanService) ConfigureTerms(ctx context.Context, loanID uuid.UUID, request *domain.ConfigureTermsRequest) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, customError.WrapLoanNotApproved(loanID.String(), string(loan.Status))
	}
	if loan.IsConfigured() {
		return nil, customError.WrapTermsAlreadyConfigured(loanID.String())
	}

	interestType := domain.ParseInterestType(string(request.InterestType))
	result, err := amortization.Compute(loan.Amount, request.InterestRate, loan.TermMonths, interestType, loan.RepaymentFrequency)
	if err != nil {
		return nil, err
	}

	terms := result.Terms(request.InterestRate, interestType)
	if err := s.LoanRepo.UpdateTerms(ctx, loanID, terms); err != nil {
		return nil, s.wrapLoanError(loanID, err)
	}

	s.logger.Info("loan terms configured", map[string]interface{}{
		"loan_id":            loanID.String(),
		"interest_rate":      terms.InterestRate.String(),
		"interest_type":      string(terms.InterestType),
		"total_payable":      terms.TotalPayable.String(),
		"number_of_payments": terms.NumberOfPayments,
	})

	loan.Terms = terms
	loan.UpdatedAt = s.now()
	return loan, nil
}

func (s *LoanService) ListLoans(ctx context.Context, configuredOnly bool) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.List(ctx, configuredOnly)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) ListApprovedUnconfigured(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListApprovedUnconfigured(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) ListUserLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

func (s *LoanService) ListUserConfiguredLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetSchedule derives the repayment schedule as of asOf, or as of now when asOf is nil.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID, asOf *time.Time) (*domain.ScheduleResponse, error) {
	at := s.now()
	if asOf != nil {
		at = *asOf
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.buildSchedule(ctx, loan, at)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleResponse{
		LoanID:        loanID,
		UnpaidBalance: amortization.UnpaidBalance(schedule),
		Schedule:      schedule,
	}, nil
}

func (s *LoanService) GetUnpaidBalance(ctx context.Context, loanID uuid.UUID) (*domain.UnpaidBalanceResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.buildSchedule(ctx, loan, s.now())
	if err != nil {
		return nil, err
	}

	return &domain.UnpaidBalanceResponse{
		LoanID:        loanID,
		UnpaidBalance: amortization.UnpaidBalance(schedule),
	}, nil
}

// RecordPayment records a payment against one installment. The amount and any late
// penalty are taken from the schedule at the moment of recording and frozen on the payment.
// Any method other than Cash waits for verification; the screenshot is optional here.
func (s *LoanService) RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	return s.recordPayment(ctx, request, false)
}

// RecordGCashPayment records an installment payment made through GCash. A screenshot
// of the transfer is required.
func (s *LoanService) RecordGCashPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	gcash := *request
	gcash.PaymentMethod = domain.PaymentMethodGCash
	return s.recordPayment(ctx, &gcash, true)
}

func (s *LoanService) recordPayment(ctx context.Context, request *domain.RecordPaymentRequest, requireScreenshot bool) (_ *domain.RecordPaymentResponse, err error) {
	defer func() {
		if err != nil {
			code := customError.Code(err)
			if code == "" {
				code = "UNKNOWN"
			}
			metrics.PaymentsRejected.WithLabelValues(code).Inc()
		}
	}()

	if strings.TrimSpace(string(request.PaymentMethod)) == "" {
		return nil, customError.WrapInvalidInput("payment method is required")
	}
	if requireScreenshot && (request.Screenshot == nil || strings.TrimSpace(*request.Screenshot) == "") {
		return nil, customError.WrapInvalidInput("a screenshot is required for %s payments", request.PaymentMethod)
	}

	release, err := s.locker.Acquire(ctx, request.LoanID)
	if err != nil {
		return nil, err
	}
	defer release()

	loan, err := s.getLoan(ctx, request.LoanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	schedule, err := s.buildSchedule(ctx, loan, now)
	if err != nil {
		return nil, err
	}

	entry, err := amortization.FindInstallment(schedule, request.InstallmentNumber)
	if err != nil {
		return nil, err
	}

	_, err = s.PaymentRepo.GetByLoanAndInstallment(ctx, loan.ID, request.InstallmentNumber)
	if err == nil {
		return nil, customError.WrapInstallmentAlreadyPaid(loan.ID.String(), request.InstallmentNumber)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	payment := &domain.Payment{
		ID:                uuid.New(),
		LoanID:            loan.ID,
		UserID:            request.UserID,
		InstallmentNumber: entry.InstallmentNumber,
		Amount:            entry.AmountDue,
		PenaltyAmount:     entry.OverduePenalty,
		PaymentMethod:     request.PaymentMethod,
		Screenshot:        request.Screenshot,
		Status:            domain.InitialPaymentStatus(request.PaymentMethod),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, customError.ErrInstallmentAlreadyPaid) {
			return nil, customError.WrapInstallmentAlreadyPaid(loan.ID.String(), request.InstallmentNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	metrics.PaymentsRecorded.WithLabelValues(string(payment.PaymentMethod), string(payment.Status)).Inc()
	s.logger.Info("payment recorded", map[string]interface{}{
		"loan_id":     loan.ID.String(),
		"payment_id":  payment.ID.String(),
		"installment": payment.InstallmentNumber,
		"amount":      payment.Amount.String(),
		"penalty":     payment.PenaltyAmount.String(),
		"method":      string(payment.PaymentMethod),
		"status":      string(payment.Status),
	})

	message := "Payment recorded"
	if payment.Status == domain.PaymentStatusPendingVerification {
		message = "Payment submitted for verification"
	}

	return &domain.RecordPaymentResponse{Payment: payment, Message: message}, nil
}

// UpdatePaymentStatus settles a payment awaiting verification. A Completed payment is
// recorded as a GCash payment.
func (s *LoanService) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	if status != domain.PaymentStatusCompleted && status != domain.PaymentStatusRejected {
		return nil, customError.WrapInvalidInput("status %q is not one of Completed, Rejected", status)
	}

	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPaymentNotFound(paymentID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	previous := payment.Status
	payment.Status = status
	if status == domain.PaymentStatusCompleted {
		payment.PaymentMethod = domain.PaymentMethodGCash
	}

	err = s.PaymentRepo.UpdateStatus(ctx, payment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPaymentNotFound(paymentID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("payment status updated", map[string]interface{}{
		"payment_id": paymentID.String(),
		"loan_id":    payment.LoanID.String(),
		"from":       string(previous),
		"to":         string(status),
	})

	return payment, nil
}

func (s *LoanService) ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	payments, err := s.PaymentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

func (s *LoanService) ListUserPayments(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error) {
	payments, err := s.PaymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.wrapLoanError(loanID, err)
	}
	return loan, nil
}

func (s *LoanService) wrapLoanError(loanID uuid.UUID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapLoanNotFound(loanID.String())
	}
	return customError.WrapDatabaseError(err)
}

func (s *LoanService) buildSchedule(ctx context.Context, loan *domain.Loan, asOf time.Time) ([]domain.ScheduleEntry, error) {
	if !loan.IsConfigured() {
		return nil, customError.WrapUnconfiguredLoan(loan.ID.String())
	}

	payments, err := s.PaymentRepo.ListByLoan(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := amortization.Generate(loan, payments, asOf)
	if err != nil {
		return nil, err
	}

	metrics.SchedulesGenerated.WithLabelValues(string(loan.RepaymentFrequency)).Inc()
	return schedule, nil
}
