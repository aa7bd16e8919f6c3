package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus is the derived state of one installment.
type EntryStatus string

const (
	EntryStatusPaid                EntryStatus = "Paid"
	EntryStatusPendingVerification EntryStatus = "Pending Verification"
	EntryStatusRejected            EntryStatus = "Rejected"
	EntryStatusOverdue             EntryStatus = "Overdue"
	EntryStatusUnpaid              EntryStatus = "Unpaid"
)

// DueDateLayout is the calendar-date format used for ScheduleEntry.DueDate.
const DueDateLayout = "2006-01-02"

// ScheduleEntry is one derived installment. It is never persisted.
type ScheduleEntry struct {
	InstallmentNumber int             `json:"installment"`
	DueDate           string          `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	InterestRateLabel string          `json:"interest_rate"`
	Status            EntryStatus     `json:"status"`
	OverduePenalty    decimal.Decimal `json:"overdue_penalty"`
	TotalOverdue      decimal.Decimal `json:"total_overdue"`
	PaymentMethod     *PaymentMethod  `json:"payment_method"`
	Screenshot        *string         `json:"screenshot_path"`
	PaymentID         *uuid.UUID      `json:"id"`

	DueAt time.Time `json:"-"`
}

// IsOutstanding reports whether the installment still counts toward the unpaid balance.
func (e ScheduleEntry) IsOutstanding() bool {
	return e.Status == EntryStatusUnpaid || e.Status == EntryStatusOverdue
}

type ScheduleResponse struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	UnpaidBalance decimal.Decimal `json:"unpaid_balance"`
	Schedule      []ScheduleEntry `json:"schedule"`
}

// OverdueSummary is the per-loan result of the overdue sweep.
type OverdueSummary struct {
	LoanID           uuid.UUID       `json:"loan_id"`
	OverdueCount     int             `json:"overdue_count"`
	OverdueAmount    decimal.Decimal `json:"overdue_amount"`
	OverduePenalties decimal.Decimal `json:"overdue_penalties"`
}

// Reminder is an unpaid installment falling due soon.
type Reminder struct {
	LoanID            uuid.UUID       `json:"loan_id"`
	UserID            uuid.UUID       `json:"user_id"`
	InstallmentNumber int             `json:"installment"`
	DueDate           string          `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
}
