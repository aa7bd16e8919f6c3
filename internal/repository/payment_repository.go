package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const paymentColumns = `id, loan_id, user_id, installment_number, amount, penalty_amount,
		payment_method, screenshot, status, created_at, updated_at`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, loan_id, user_id, installment_number, amount, penalty_amount,
			payment_method, screenshot, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.UserID,
		payment.InstallmentNumber,
		payment.Amount,
		payment.PenaltyAmount,
		payment.PaymentMethod,
		payment.Screenshot,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("installment %d of loan %s: %w", payment.InstallmentNumber, payment.LoanID, customError.ErrInstallmentAlreadyPaid)
	}

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByLoanAndInstallment(ctx context.Context, loanID uuid.UUID, installment int) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 AND installment_number = $2`

	var payment domain.Payment
	if err := r.db.GetContext(ctx, &payment, query, loanID, installment); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE loan_id = $1
		ORDER BY installment_number`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE loan_id IN (SELECT id FROM loans WHERE user_id = $1)
		ORDER BY created_at DESC`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, payment_method = $3, updated_at = $4
		WHERE id = $1
	`

	payment.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, payment.ID, payment.Status, payment.PaymentMethod, payment.UpdatedAt)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
