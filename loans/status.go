package loans

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/loantrack/models"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// dateOnly truncates a timestamp to its calendar date in UTC. All loan
// dates are stored and compared at day granularity.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MaterializeStatus returns the status a loan should display as of today:
// an unpaid loan past its due date reads as overdue. The function is pure;
// callers persist the flip as a best-effort cache write. Applying it twice
// yields the same result.
func MaterializeStatus(loan *models.Loan, today time.Time) string {
	if loan.Status == models.StatusUnpaid && loan.DueDate.Before(dateOnly(today)) {
		return models.StatusOverdue
	}
	return loan.Status
}

// TotalPayable computes principal plus simple interest, rounded to cents.
func TotalPayable(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Add(amount.Mul(rate).Div(hundred)).Round(2)
}
