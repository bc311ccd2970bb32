package loans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/loantrack/models"
)

func TestPeriodWindowMonths(t *testing.T) {
	assert.Equal(t, 3, Period3Months.Months())
	assert.Equal(t, 6, Period6Months.Months())
	assert.Equal(t, 9, Period9Months.Months())
	assert.Equal(t, 12, Period12Months.Months())
	assert.Equal(t, 0, PeriodAll.Months())
	assert.Equal(t, 0, PeriodWindow("bogus").Months())
}

func TestStatisticsWindowAndRealizedInterest(t *testing.T) {
	s, db := newTestService(t)

	// Paid inside the window: realized interest 100.
	paidRecent := mustCreateLoan(t, s, 1000, 10, 14)
	require.NoError(t, s.MarkLoanAsPaid(admin, paidRecent, nil, nil))

	// Open inside the window: interest not realized.
	mustCreateLoan(t, s, 2000, 5, 60)

	// Paid, but started four months ago: outside a 3-month window.
	paidOld := mustCreateLoan(t, s, 500, 20, 30)
	require.NoError(t, s.MarkLoanAsPaid(admin, paidOld, nil, nil))
	oldStart := dateOnly(time.Now()).AddDate(0, -4, 0)
	require.NoError(t, db.Model(&models.Loan{}).Where("id = ?", paidOld).
		Update("start_date", oldStart).Error)

	stats, err := s.Statistics(Period3Months)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLoans)
	assert.Equal(t, 1, stats.PaidLoans)
	assert.Equal(t, 1, stats.UnpaidLoans)
	assert.True(t, stats.TotalAmountLent.Equal(decimal.NewFromInt(3000)),
		"lent = %s", stats.TotalAmountLent)
	assert.True(t, stats.TotalInterestEarned.Equal(decimal.NewFromInt(100)),
		"realized interest = %s", stats.TotalInterestEarned)
	assert.True(t, stats.TotalAmountRepaid.Equal(decimal.NewFromInt(1100)),
		"repaid = %s", stats.TotalAmountRepaid)

	all, err := s.Statistics(PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalLoans)
	assert.Equal(t, 2, all.PaidLoans)
	assert.True(t, all.TotalInterestEarned.Equal(decimal.NewFromInt(200)),
		"all-time realized interest = %s", all.TotalInterestEarned)
}

func TestStatisticsEmptyBook(t *testing.T) {
	s, _ := newTestService(t)

	stats, err := s.Statistics(Period12Months)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLoans)
	assert.True(t, stats.TotalAmountLent.IsZero())
	assert.True(t, stats.TotalInterestEarned.IsZero())
}
