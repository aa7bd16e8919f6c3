// Package amortization derives loan payment terms and installment schedules.
//
// Everything here is a pure function of its arguments: no storage, no clock, no logging.
// Callers load loans and payments, supply the current instant, and serialize the result.
package amortization

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerYear  = decimal.NewFromInt(52)
	daysPerYear   = decimal.NewFromInt(365)

	// Month conversions are fixed approximations; 4.33 weeks and
	// 30 days per month are not consistent with the 14-day bi-weekly spacing.
	weeksPerMonth   = decimal.RequireFromString("4.33")
	biWeeksPerMonth = decimal.RequireFromString("2.17")
	daysPerMonth    = decimal.NewFromInt(30)
)

// Result holds the figures derived from a loan's rate and term.
type Result struct {
	TotalInterest    decimal.Decimal
	TotalPayable     decimal.Decimal
	PaymentPerPeriod decimal.Decimal
	NumberOfPayments int
}

// Terms attaches the result to the rate it was computed from.
func (r Result) Terms(ratePercent decimal.Decimal, interestType domain.InterestType) *domain.LoanTerms {
	return &domain.LoanTerms{
		InterestRate:     ratePercent,
		InterestType:     interestType,
		TotalInterest:    r.TotalInterest,
		TotalPayable:     r.TotalPayable,
		PaymentPerPeriod: r.PaymentPerPeriod,
		NumberOfPayments: r.NumberOfPayments,
	}
}

// Compute derives simple-interest totals and the per-installment amount.
//
// Principal and rate are stored with 2 decimal places, so inputs carrying more are
// rejected; this keeps TotalPayable equal to principal plus TotalInterest and lets the
// stored terms be recomputed from the stored rate. Monetary outputs are rounded to 2
// places half away from zero. PaymentPerPeriod is taken from the unrounded total so
// that rounding is applied once per figure.
func Compute(
	principal decimal.Decimal,
	ratePercent decimal.Decimal,
	termMonths int,
	interestType domain.InterestType,
	frequency domain.RepaymentFrequency,
) (Result, error) {
	if principal.IsNegative() {
		return Result{}, customError.WrapInvalidInput("principal %s must not be negative", principal)
	}
	if !utils.HasAtMostPlaces(principal, utils.MoneyPlaces) {
		return Result{}, customError.WrapInvalidInput("principal %s has more than %d decimal places", principal, utils.MoneyPlaces)
	}
	if termMonths < 1 {
		return Result{}, customError.WrapInvalidInput("term of %d months must be at least 1", termMonths)
	}
	if ratePercent.IsNegative() || ratePercent.GreaterThan(hundred) {
		return Result{}, customError.WrapInvalidInput("interest rate %s%% must be within 0..100", ratePercent)
	}
	if !utils.HasAtMostPlaces(ratePercent, utils.MoneyPlaces) {
		return Result{}, customError.WrapInvalidInput("interest rate %s%% has more than %d decimal places", ratePercent, utils.MoneyPlaces)
	}

	numberOfPayments := NumberOfPayments(termMonths, frequency)
	if numberOfPayments < 1 {
		return Result{}, customError.WrapInvalidInput("term of %d months yields no installments", termMonths)
	}

	totalInterest := TotalInterest(principal, ratePercent, termMonths, interestType)
	totalPayable := principal.Add(totalInterest)
	paymentPerPeriod := totalPayable.Div(decimal.NewFromInt(int64(numberOfPayments)))

	return Result{
		TotalInterest:    utils.RoundMoney(totalInterest),
		TotalPayable:     utils.RoundMoney(totalPayable),
		PaymentPerPeriod: utils.RoundMoney(paymentPerPeriod),
		NumberOfPayments: numberOfPayments,
	}, nil
}

// TotalInterest returns the unrounded simple interest over the whole term.
func TotalInterest(principal, ratePercent decimal.Decimal, termMonths int, interestType domain.InterestType) decimal.Decimal {
	annualRate := ratePercent.Div(hundred)
	term := decimal.NewFromInt(int64(termMonths))

	switch interestType {
	case domain.InterestMonthly:
		return principal.Mul(annualRate.Div(monthsPerYear)).Mul(term)
	case domain.InterestWeekly:
		return principal.Mul(annualRate.Div(weeksPerYear)).Mul(term.Mul(weeksPerMonth))
	case domain.InterestDaily:
		return principal.Mul(annualRate.Div(daysPerYear)).Mul(term.Mul(daysPerMonth))
	default:
		return principal.Mul(annualRate).Mul(term.Div(monthsPerYear))
	}
}

// NumberOfPayments returns the installment count for a term, rounding partial periods up.
func NumberOfPayments(termMonths int, frequency domain.RepaymentFrequency) int {
	switch frequency {
	case domain.FrequencyWeekly:
		return utils.CeilPeriods(termMonths, weeksPerMonth)
	case domain.FrequencyBiWeekly:
		return utils.CeilPeriods(termMonths, biWeeksPerMonth)
	default:
		return termMonths
	}
}
