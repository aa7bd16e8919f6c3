package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "Pending"
	LoanStatusApproved  LoanStatus = "Approved"
	LoanStatusRejected  LoanStatus = "Rejected"
	LoanStatusCancelled LoanStatus = "Cancelled"
)

// InterestType is the basis the annual rate is spread over when computing simple interest.
type InterestType string

const (
	InterestAnnual  InterestType = "Annual"
	InterestMonthly InterestType = "Monthly"
	InterestWeekly  InterestType = "Weekly"
	InterestDaily   InterestType = "Daily"
)

// ParseInterestType maps a stored or requested value to an InterestType.
// Anything unrecognized falls back to Annual.
func ParseInterestType(s string) InterestType {
	switch InterestType(s) {
	case InterestMonthly, InterestWeekly, InterestDaily:
		return InterestType(s)
	default:
		return InterestAnnual
	}
}

type RepaymentFrequency string

const (
	FrequencyWeekly   RepaymentFrequency = "weekly"
	FrequencyBiWeekly RepaymentFrequency = "bi-weekly"
	FrequencyMonthly  RepaymentFrequency = "monthly"
)

// ParseRepaymentFrequency maps a stored or requested value to a RepaymentFrequency.
// Anything unrecognized falls back to monthly.
func ParseRepaymentFrequency(s string) RepaymentFrequency {
	switch RepaymentFrequency(s) {
	case FrequencyWeekly, FrequencyBiWeekly:
		return RepaymentFrequency(s)
	default:
		return FrequencyMonthly
	}
}

// LoanTerms holds the configured rate and the figures derived from it.
// Derived fields are written once, when the interest is configured.
type LoanTerms struct {
	InterestRate     decimal.Decimal `json:"interest_rate"`
	InterestType     InterestType    `json:"interest_type"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalPayable     decimal.Decimal `json:"total_payable"`
	PaymentPerPeriod decimal.Decimal `json:"payment_per_period"`
	NumberOfPayments int             `json:"number_of_payments"`
}

// Loan represents a loan entity
type Loan struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	Amount             decimal.Decimal    `json:"amount"`
	Purpose            string             `json:"purpose"`
	TermMonths         int                `json:"term"`
	RepaymentFrequency RepaymentFrequency `json:"repayment_frequency"`
	Status             LoanStatus         `json:"status"`
	Terms              *LoanTerms         `json:"terms,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// IsConfigured reports whether interest terms have been attached.
func (l *Loan) IsConfigured() bool {
	return l.Terms != nil
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	UserID             uuid.UUID       `json:"user_id" validate:"required"`
	Amount             decimal.Decimal `json:"amount" validate:"decimal_gt=0,decimal_places=2"`
	Purpose            string          `json:"purpose" validate:"required"`
	TermMonths         int             `json:"term" validate:"required,gt=0"`
	RepaymentFrequency string          `json:"repayment_frequency" validate:"required"`
}

type UpdateLoanStatusRequest struct {
	Status LoanStatus `json:"status" validate:"required,oneof=Approved Rejected Cancelled"`
}

type ConfigureTermsRequest struct {
	InterestRate decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,decimal_lte=100,decimal_places=2"`
	InterestType InterestType    `json:"interest_type" validate:"required,oneof=Annual Monthly Weekly Daily"`
}

type UnpaidBalanceResponse struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	UnpaidBalance decimal.Decimal `json:"unpaid_balance"`
}
