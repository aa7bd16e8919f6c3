package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places monetary values are rounded to.
const MoneyPlaces = 2

// RoundMoney rounds to 2 decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// HasAtMostPlaces reports whether d carries no digits beyond the given decimal places.
func HasAtMostPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// CeilPeriods returns ceil(termMonths * perMonth) as an installment count.
// The product is exact in decimal, so 12 * 4.33 = 51.96 rounds up to 52 without float drift.
func CeilPeriods(termMonths int, perMonth decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(termMonths)).Mul(perMonth).Ceil().IntPart())
}

// CalculateDueDate calculates the due date for a specific installment.
// Installment 1 is due intervalDays after start, installment 2 twice that, etc.
func CalculateDueDate(start time.Time, installment int, intervalDays int) time.Time {
	return start.AddDate(0, 0, installment*intervalDays)
}

// IsDateOverdue reports whether dueDate has passed as of the given instant.
func IsDateOverdue(dueDate time.Time, asOf time.Time) bool {
	return asOf.After(dueDate)
}

// FormatPercent renders a rate the way it is stored, with two places and a percent sign.
func FormatPercent(rate decimal.Decimal) string {
	return rate.StringFixed(MoneyPlaces) + "%"
}
