package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

// PenaltyRate is the flat late fee charged on an installment left unpaid past its due date.
var PenaltyRate = decimal.RequireFromString("0.03")

// DaysBetweenPayments returns the due-date spacing for a repayment frequency.
func DaysBetweenPayments(frequency domain.RepaymentFrequency) int {
	switch frequency {
	case domain.FrequencyWeekly:
		return 7
	case domain.FrequencyBiWeekly:
		return 14
	default:
		return 30
	}
}

// Generate derives the full installment schedule of a configured loan as of the given instant.
//
// Installments with a recorded payment report that payment's status and its frozen penalty.
// Installments without one are Overdue once asOf is past the due date, and their penalty is
// recomputed on every call until a payment freezes it.
func Generate(loan *domain.Loan, payments []*domain.Payment, asOf time.Time) ([]domain.ScheduleEntry, error) {
	if loan == nil {
		return nil, customError.WrapInvalidInput("loan is required")
	}
	if loan.Terms == nil {
		return nil, customError.WrapUnconfiguredLoan(loan.ID.String())
	}

	terms := loan.Terms
	if terms.NumberOfPayments < 1 {
		return nil, customError.WrapInvalidInput("loan %s has %d installments", loan.ID, terms.NumberOfPayments)
	}

	byInstallment := make(map[int]*domain.Payment, len(payments))
	for _, payment := range payments {
		if payment == nil {
			continue
		}
		// at most one payment per installment; keep the first if storage ever disagrees
		if _, seen := byInstallment[payment.InstallmentNumber]; !seen {
			byInstallment[payment.InstallmentNumber] = payment
		}
	}

	interval := DaysBetweenPayments(loan.RepaymentFrequency)
	amountDue := terms.PaymentPerPeriod
	rateLabel := utils.FormatPercent(terms.InterestRate)
	penalty := utils.RoundMoney(amountDue.Mul(PenaltyRate))

	schedule := make([]domain.ScheduleEntry, 0, terms.NumberOfPayments)
	for i := 1; i <= terms.NumberOfPayments; i++ {
		dueAt := utils.CalculateDueDate(loan.CreatedAt, i, interval)

		entry := domain.ScheduleEntry{
			InstallmentNumber: i,
			DueDate:           dueAt.Format(domain.DueDateLayout),
			DueAt:             dueAt,
			AmountDue:         amountDue,
			InterestRateLabel: rateLabel,
		}

		if payment, ok := byInstallment[i]; ok {
			entry.Status = entryStatusFor(payment.Status)
			entry.OverduePenalty = payment.PenaltyAmount
			method := payment.PaymentMethod
			paymentID := payment.ID
			entry.PaymentMethod = &method
			entry.Screenshot = payment.Screenshot
			entry.PaymentID = &paymentID
		} else if utils.IsDateOverdue(dueAt, asOf) {
			entry.Status = domain.EntryStatusOverdue
			entry.OverduePenalty = penalty
		} else {
			entry.Status = domain.EntryStatusUnpaid
			entry.OverduePenalty = decimal.Zero
		}
		entry.TotalOverdue = amountDue.Add(entry.OverduePenalty)

		schedule = append(schedule, entry)
	}

	return schedule, nil
}

func entryStatusFor(status domain.PaymentStatus) domain.EntryStatus {
	switch status {
	case domain.PaymentStatusCompleted:
		return domain.EntryStatusPaid
	case domain.PaymentStatusRejected:
		return domain.EntryStatusRejected
	default:
		return domain.EntryStatusPendingVerification
	}
}

// UnpaidBalance sums AmountDue over Unpaid and Overdue entries.
// Penalties are not included, unlike TotalOverdue on each entry.
func UnpaidBalance(schedule []domain.ScheduleEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, entry := range schedule {
		if entry.IsOutstanding() {
			balance = balance.Add(entry.AmountDue)
		}
	}
	return balance
}

// FindInstallment returns the entry for an installment number within the schedule.
func FindInstallment(schedule []domain.ScheduleEntry, installment int) (*domain.ScheduleEntry, error) {
	if installment < 1 || installment > len(schedule) {
		return nil, customError.WrapInstallmentNotFound(installment, len(schedule))
	}
	entry := schedule[installment-1]
	return &entry, nil
}
