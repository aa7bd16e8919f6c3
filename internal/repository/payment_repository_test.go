package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

var paymentColumnNames = []string{
	"id", "loan_id", "user_id", "installment_number", "amount", "penalty_amount",
	"payment_method", "screenshot", "status", "created_at", "updated_at",
}

func newPayment(loanID uuid.UUID, installment int, method domain.PaymentMethod) *domain.Payment {
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	return &domain.Payment{
		ID:                uuid.New(),
		LoanID:            loanID,
		UserID:            uuid.New(),
		InstallmentNumber: installment,
		Amount:            decimal.RequireFromString("933.33"),
		PenaltyAmount:     decimal.Zero,
		PaymentMethod:     method,
		Status:            domain.InitialPaymentStatus(method),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestPaymentRepository_Create(t *testing.T) {
	t.Run("inserts payment", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		payment := newPayment(uuid.New(), 1, domain.PaymentMethodCash)

		mock.ExpectExec("INSERT INTO payments").
			WithArgs(payment.ID, payment.LoanID, payment.UserID, payment.InstallmentNumber,
				payment.Amount, payment.PenaltyAmount, payment.PaymentMethod, nil,
				payment.Status, payment.CreatedAt, payment.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), payment))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate installment maps to already paid", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		payment := newPayment(uuid.New(), 2, domain.PaymentMethodGCash)

		mock.ExpectExec("INSERT INTO payments").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_payments_loan_installment"})

		err := repo.Create(context.Background(), payment)
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInstallmentAlreadyPaid))
		assert.Contains(t, err.Error(), "installment 2")
	})

	t.Run("other driver errors pass through", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		payment := newPayment(uuid.New(), 1, domain.PaymentMethodCash)
		dbErr := &pq.Error{Code: "23503", Message: "foreign key violation"}

		mock.ExpectExec("INSERT INTO payments").WillReturnError(dbErr)

		err := repo.Create(context.Background(), payment)
		assert.False(t, errors.Is(err, customError.ErrInstallmentAlreadyPaid))
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPaymentRepository_GetByLoanAndInstallment(t *testing.T) {
	createdAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		id, loanID, userID := uuid.New(), uuid.New(), uuid.New()
		screenshot := "uploads/receipt.png"

		mock.ExpectQuery(`FROM payments WHERE loan_id = \$1 AND installment_number = \$2`).
			WithArgs(loanID, 3).
			WillReturnRows(sqlmock.NewRows(paymentColumnNames).AddRow(
				id.String(), loanID.String(), userID.String(), int64(3), "961.33", "28.00",
				"GCash", screenshot, "Pending Verification", createdAt, createdAt,
			))

		payment, err := repo.GetByLoanAndInstallment(context.Background(), loanID, 3)
		require.NoError(t, err)

		assert.Equal(t, id, payment.ID)
		assert.Equal(t, 3, payment.InstallmentNumber)
		assert.True(t, payment.PenaltyAmount.Equal(decimal.NewFromInt(28)))
		assert.Equal(t, domain.PaymentMethodGCash, payment.PaymentMethod)
		assert.Equal(t, domain.PaymentStatusPendingVerification, payment.Status)
		require.NotNil(t, payment.Screenshot)
		assert.Equal(t, screenshot, *payment.Screenshot)
	})

	t.Run("absent", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		loanID := uuid.New()

		mock.ExpectQuery(`FROM payments WHERE loan_id = \$1 AND installment_number = \$2`).
			WithArgs(loanID, 9).
			WillReturnRows(sqlmock.NewRows(paymentColumnNames))

		payment, err := repo.GetByLoanAndInstallment(context.Background(), loanID, 9)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, payment)
	})
}

func TestPaymentRepository_ListByLoan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	loanID, userID := uuid.New(), uuid.New()
	createdAt := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(paymentColumnNames).
		AddRow(uuid.NewString(), loanID.String(), userID.String(), int64(1), "933.33", "0", "Cash", nil, "Completed", createdAt, createdAt).
		AddRow(uuid.NewString(), loanID.String(), userID.String(), int64(2), "933.33", "0", "GCash", "a.png", "Rejected", createdAt, createdAt)

	mock.ExpectQuery(`FROM payments\s+WHERE loan_id = \$1\s+ORDER BY installment_number`).
		WithArgs(loanID).
		WillReturnRows(rows)

	payments, err := repo.ListByLoan(context.Background(), loanID)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Nil(t, payments[0].Screenshot)
	assert.Equal(t, domain.PaymentStatusCompleted, payments[0].Status)
	assert.Equal(t, domain.PaymentStatusRejected, payments[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM loans WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(paymentColumnNames))

	payments, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	t.Run("updates payment", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		payment := newPayment(uuid.New(), 1, domain.PaymentMethodGCash)
		payment.Status = domain.PaymentStatusCompleted

		mock.ExpectExec("UPDATE payments").
			WithArgs(payment.ID, domain.PaymentStatusCompleted, domain.PaymentMethodGCash, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		before := payment.UpdatedAt
		require.NoError(t, repo.UpdateStatus(context.Background(), payment))
		assert.True(t, payment.UpdatedAt.After(before))
	})

	t.Run("unknown payment", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPaymentRepository(db)
		payment := newPayment(uuid.New(), 1, domain.PaymentMethodGCash)

		mock.ExpectExec("UPDATE payments").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(context.Background(), payment), sql.ErrNoRows)
	})
}
