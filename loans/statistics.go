package loans

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/loantrack/models"
)

// PeriodWindow selects how far back Statistics looks, by start_date.
type PeriodWindow string

const (
	Period3Months  PeriodWindow = "3_months"
	Period6Months  PeriodWindow = "6_months"
	Period9Months  PeriodWindow = "9_months"
	Period12Months PeriodWindow = "12_months"
	PeriodAll      PeriodWindow = ""
)

// Months returns the window length, or 0 for an unbounded window.
func (p PeriodWindow) Months() int {
	switch p {
	case Period3Months:
		return 3
	case Period6Months:
		return 6
	case Period9Months:
		return 9
	case Period12Months:
		return 12
	}
	return 0
}

// Statistics aggregates a date-bounded slice of the loan book. Interest is
// realized only on paid loans, as total_payable - loan_amount; unrealized
// interest on open loans is excluded.
type Statistics struct {
	TotalLoans          int             `json:"total_loans"`
	TotalAmountLent     decimal.Decimal `json:"total_amount_lent"`
	TotalInterestEarned decimal.Decimal `json:"total_interest_earned"`
	TotalAmountRepaid   decimal.Decimal `json:"total_amount_repaid"`
	PaidLoans           int             `json:"paid_loans"`
	UnpaidLoans         int             `json:"unpaid_loans"`
	OverdueLoans        int             `json:"overdue_loans"`
	PartiallyPaidLoans  int             `json:"partially_paid_loans"`
}

// Statistics folds the loans whose start_date falls inside the window.
func (s *Service) Statistics(period PeriodWindow) (*Statistics, error) {
	q := s.db.Model(&models.Loan{})
	if months := period.Months(); months > 0 {
		q = q.Where("start_date >= ?", dateOnly(s.now()).AddDate(0, -months, 0))
	}

	var rows []models.Loan
	if err := q.Find(&rows).Error; err != nil {
		s.log.WithError(err).Error("statistics query failed")
		return nil, fmt.Errorf("loan statistics: %w", err)
	}

	stats := &Statistics{
		TotalAmountLent:     decimal.Zero,
		TotalInterestEarned: decimal.Zero,
		TotalAmountRepaid:   decimal.Zero,
	}
	for i := range rows {
		loan := &rows[i]
		stats.TotalLoans++
		stats.TotalAmountLent = stats.TotalAmountLent.Add(loan.LoanAmount)
		stats.TotalAmountRepaid = stats.TotalAmountRepaid.Add(loan.AmountPaid)
		switch loan.Status {
		case models.StatusPaid:
			stats.PaidLoans++
			stats.TotalInterestEarned = stats.TotalInterestEarned.Add(loan.InterestAmount())
		case models.StatusUnpaid:
			stats.UnpaidLoans++
		case models.StatusOverdue:
			stats.OverdueLoans++
		case models.StatusPartiallyPaid:
			stats.PartiallyPaidLoans++
		}
	}
	return stats, nil
}
