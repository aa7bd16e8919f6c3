package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
)

const loanColumns = `id, user_id, amount, purpose, term, repayment_frequency, status,
		interest_rate, interest_type, total_interest, total_payable, payment_per_period, number_of_payments,
		created_at, updated_at`

// loanRow mirrors the loans table; interest columns stay NULL until terms are configured.
type loanRow struct {
	ID                 uuid.UUID           `db:"id"`
	UserID             uuid.UUID           `db:"user_id"`
	Amount             decimal.Decimal     `db:"amount"`
	Purpose            string              `db:"purpose"`
	Term               int                 `db:"term"`
	RepaymentFrequency string              `db:"repayment_frequency"`
	Status             string              `db:"status"`
	InterestRate       decimal.NullDecimal `db:"interest_rate"`
	InterestType       sql.NullString      `db:"interest_type"`
	TotalInterest      decimal.NullDecimal `db:"total_interest"`
	TotalPayable       decimal.NullDecimal `db:"total_payable"`
	PaymentPerPeriod   decimal.NullDecimal `db:"payment_per_period"`
	NumberOfPayments   sql.NullInt64       `db:"number_of_payments"`
	CreatedAt          time.Time           `db:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at"`
}

func (r loanRow) toDomain() *domain.Loan {
	loan := &domain.Loan{
		ID:                 r.ID,
		UserID:             r.UserID,
		Amount:             r.Amount,
		Purpose:            r.Purpose,
		TermMonths:         r.Term,
		RepaymentFrequency: domain.ParseRepaymentFrequency(r.RepaymentFrequency),
		Status:             domain.LoanStatus(r.Status),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.InterestRate.Valid && r.InterestType.Valid && r.NumberOfPayments.Valid {
		loan.Terms = &domain.LoanTerms{
			InterestRate:     r.InterestRate.Decimal,
			InterestType:     domain.ParseInterestType(r.InterestType.String),
			TotalInterest:    r.TotalInterest.Decimal,
			TotalPayable:     r.TotalPayable.Decimal,
			PaymentPerPeriod: r.PaymentPerPeriod.Decimal,
			NumberOfPayments: int(r.NumberOfPayments.Int64),
		}
	}

	return loan
}

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, user_id, amount, purpose, term, repayment_frequency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.Amount,
		loan.Purpose,
		loan.TermMonths,
		loan.RepaymentFrequency,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var row loanRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoanStatus) error {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	return r.execOne(ctx, query, id, status, time.Now())
}

func (r *loanRepository) UpdateTerms(ctx context.Context, id uuid.UUID, terms *domain.LoanTerms) error {
	query := `
		UPDATE loans
		SET interest_rate = $2, interest_type = $3, total_interest = $4, total_payable = $5,
			payment_per_period = $6, number_of_payments = $7, updated_at = $8
		WHERE id = $1
	`

	return r.execOne(ctx, query,
		id,
		terms.InterestRate,
		terms.InterestType,
		terms.TotalInterest,
		terms.TotalPayable,
		terms.PaymentPerPeriod,
		terms.NumberOfPayments,
		time.Now(),
	)
}

func (r *loanRepository) List(ctx context.Context, configuredOnly bool) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans`
	if configuredOnly {
		query += ` WHERE interest_rate IS NOT NULL AND interest_type IS NOT NULL`
	}
	query += ` ORDER BY created_at DESC`

	return r.selectLoans(ctx, query)
}

func (r *loanRepository) ListApprovedUnconfigured(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE status = $1 AND interest_rate IS NULL
		ORDER BY created_at DESC`

	return r.selectLoans(ctx, query, domain.LoanStatusApproved)
}

func (r *loanRepository) ListByUser(ctx context.Context, userID uuid.UUID, configuredOnly bool) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1`
	if configuredOnly {
		query += ` AND interest_rate IS NOT NULL AND interest_type IS NOT NULL`
	}
	query += ` ORDER BY created_at DESC`

	return r.selectLoans(ctx, query, userID)
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE status = $1 AND interest_rate IS NOT NULL AND number_of_payments IS NOT NULL
		ORDER BY created_at`

	return r.selectLoans(ctx, query, domain.LoanStatusApproved)
}

func (r *loanRepository) selectLoans(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toDomain())
	}
	return loans, nil
}

// execOne runs an update that must touch exactly one row.
func (r *loanRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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
