package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/metrics"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

// OverdueReport sweeps approved loans with terms and summarizes their overdue
// installments as of asOf. Loans with nothing overdue are left out of the result.
// A loan that fails to load is logged and skipped. If ctx ends mid-sweep the
// partial totals are discarded and the gauges keep their previous values.
func (s *LoanService) OverdueReport(ctx context.Context, asOf time.Time) ([]domain.OverdueSummary, error) {
	loans, err := s.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summaries := make([]domain.OverdueSummary, 0)
	totalCount, totalPenalties := 0, decimal.Zero

	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		schedule, err := s.buildSchedule(ctx, loan, asOf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.WithError(err).Error("failed to derive schedule for overdue sweep", map[string]interface{}{
				"loan_id": loan.ID.String(),
			})
			continue
		}

		summary := summarizeOverdue(loan, schedule)
		if summary.OverdueCount == 0 {
			continue
		}

		totalCount += summary.OverdueCount
		totalPenalties = totalPenalties.Add(summary.OverduePenalties)
		summaries = append(summaries, summary)

		s.logger.Warn("loan has overdue installments", map[string]interface{}{
			"loan_id":           loan.ID.String(),
			"user_id":           loan.UserID.String(),
			"overdue_count":     summary.OverdueCount,
			"overdue_amount":    summary.OverdueAmount.String(),
			"overdue_penalties": summary.OverduePenalties.String(),
		})
	}

	metrics.OverdueInstallments.Set(float64(totalCount))
	metrics.OverduePenalties.Set(totalPenalties.InexactFloat64())

	s.logger.Info("overdue sweep finished", map[string]interface{}{
		"as_of":         asOf.Format(time.RFC3339),
		"loans_checked": len(loans),
		"loans_overdue": len(summaries),
		"installments":  totalCount,
	})

	return summaries, nil
}

// UpcomingInstallments lists Unpaid installments falling due in (asOf, asOf+window].
func (s *LoanService) UpcomingInstallments(ctx context.Context, asOf time.Time, window time.Duration) ([]domain.Reminder, error) {
	loans, err := s.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	horizon := asOf.Add(window)
	reminders := make([]domain.Reminder, 0)

	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		schedule, err := s.buildSchedule(ctx, loan, asOf)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.WithError(err).Error("failed to derive schedule for reminders", map[string]interface{}{
				"loan_id": loan.ID.String(),
			})
			continue
		}

		for _, entry := range schedule {
			if entry.Status != domain.EntryStatusUnpaid {
				continue
			}
			if !entry.DueAt.After(asOf) || entry.DueAt.After(horizon) {
				continue
			}

			reminder := domain.Reminder{
				LoanID:            loan.ID,
				UserID:            loan.UserID,
				InstallmentNumber: entry.InstallmentNumber,
				DueDate:           entry.DueDate,
				AmountDue:         entry.AmountDue,
			}
			reminders = append(reminders, reminder)

			s.logger.Info("installment due soon", map[string]interface{}{
				"loan_id":     loan.ID.String(),
				"user_id":     loan.UserID.String(),
				"installment": entry.InstallmentNumber,
				"due_date":    entry.DueDate,
				"amount_due":  entry.AmountDue.String(),
			})
		}
	}

	return reminders, nil
}

func summarizeOverdue(loan *domain.Loan, schedule []domain.ScheduleEntry) domain.OverdueSummary {
	summary := domain.OverdueSummary{
		LoanID:           loan.ID,
		OverdueAmount:    decimal.Zero,
		OverduePenalties: decimal.Zero,
	}
	for _, entry := range schedule {
		if entry.Status != domain.EntryStatusOverdue {
			continue
		}
		summary.OverdueCount++
		summary.OverdueAmount = summary.OverdueAmount.Add(entry.AmountDue)
		summary.OverduePenalties = summary.OverduePenalties.Add(entry.OverduePenalty)
	}
	return summary
}
