package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted           PaymentStatus = "Completed"
	PaymentStatusPendingVerification PaymentStatus = "Pending Verification"
	PaymentStatusRejected            PaymentStatus = "Rejected"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "Cash"
	PaymentMethodGCash PaymentMethod = "GCash"
)

// InitialPaymentStatus returns the status a freshly recorded payment starts in.
// Cash is settled on the spot, everything else waits for verification.
func InitialPaymentStatus(method PaymentMethod) PaymentStatus {
	if method == PaymentMethodCash {
		return PaymentStatusCompleted
	}
	return PaymentStatusPendingVerification
}

// Payment is a recorded payment against one installment of a loan.
// Amount and PenaltyAmount are frozen from the schedule at the time of recording.
type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	PenaltyAmount     decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method" db:"payment_method"`
	Screenshot        *string         `json:"screenshot,omitempty" db:"screenshot"`
	Status            PaymentStatus   `json:"status" db:"status"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type RecordPaymentRequest struct {
	LoanID            uuid.UUID     `json:"loan_id" validate:"required"`
	UserID            uuid.UUID     `json:"user_id" validate:"required"`
	InstallmentNumber int           `json:"installment_number" validate:"required,gt=0"`
	PaymentMethod     PaymentMethod `json:"payment_method" validate:"required,max=30"`
	Screenshot        *string       `json:"screenshot,omitempty"`
}

type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=Completed Rejected"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Message string   `json:"message"`
}
