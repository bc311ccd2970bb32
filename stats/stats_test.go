package stats

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/loantrack/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Loan{}, &models.Payment{}, &models.LoanHistory{}))
	return db
}

func seedPaidLoan(t *testing.T, db *gorm.DB, borrower string, amount, total float64, datePaid time.Time) {
	t.Helper()
	loan := models.Loan{
		BorrowerName: borrower,
		LoanAmount:   decimal.NewFromFloat(amount),
		InterestRate: decimal.NewFromInt(10),
		DurationDays: 30,
		TotalPayable: decimal.NewFromFloat(total),
		AmountPaid:   decimal.NewFromFloat(total),
		Status:       models.StatusPaid,
		StartDate:    datePaid.AddDate(0, 0, -30),
		DueDate:      datePaid,
		DatePaid:     &datePaid,
		CreatedBy:    1,
	}
	require.NoError(t, db.Create(&loan).Error)
}

func newTestAggregator(t *testing.T, now time.Time) (*Aggregator, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	a := NewAggregator(db)
	a.now = func() time.Time { return now }
	return a, db
}

func TestMonthlyInterestIncomeZeroFilled(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a, db := newTestAggregator(t, now)

	// 100 interest paid this month, 50 two months back, nothing in July.
	seedPaidLoan(t, db, "John Doe", 1000, 1100, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	seedPaidLoan(t, db, "Jane Roe", 500, 550, time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC))
	// Outside the 3-month window entirely.
	seedPaidLoan(t, db, "Old Timer", 900, 990, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))

	series, err := a.MonthlyInterestIncome(3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "Jun 2026", series[0].Label)
	assert.True(t, series[0].Value.Equal(decimal.NewFromInt(50)), "jun = %s", series[0].Value)
	assert.Equal(t, "Jul 2026", series[1].Label)
	assert.True(t, series[1].Value.IsZero(), "empty months are zero-filled")
	assert.Equal(t, "Aug 2026", series[2].Label)
	assert.True(t, series[2].Value.Equal(decimal.NewFromInt(100)), "aug = %s", series[2].Value)
}

func TestMonthlyInterestIncomeClampsMonths(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a, _ := newTestAggregator(t, now)

	series, err := a.MonthlyInterestIncome(0)
	require.NoError(t, err)
	assert.Len(t, series, 1)

	series, err = a.MonthlyInterestIncome(500)
	require.NoError(t, err)
	assert.Len(t, series, 36)
}

func TestStatusDistribution(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a, db := newTestAggregator(t, now)

	seedPaidLoan(t, db, "John Doe", 1000, 1100, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	for _, status := range []string{models.StatusUnpaid, models.StatusUnpaid, models.StatusOverdue} {
		loan := models.Loan{
			BorrowerName: "Someone Else",
			LoanAmount:   decimal.NewFromInt(100),
			InterestRate: decimal.NewFromInt(5),
			DurationDays: 30,
			TotalPayable: decimal.NewFromInt(105),
			AmountPaid:   decimal.Zero,
			Status:       status,
			StartDate:    now,
			DueDate:      now.AddDate(0, 0, 30),
			CreatedBy:    1,
		}
		require.NoError(t, db.Create(&loan).Error)
	}

	dist, err := a.StatusDistribution()
	require.NoError(t, err)
	assert.EqualValues(t, 1, dist[models.StatusPaid])
	assert.EqualValues(t, 2, dist[models.StatusUnpaid])
	assert.EqualValues(t, 1, dist[models.StatusOverdue])
	assert.EqualValues(t, 0, dist[models.StatusPartiallyPaid], "absent statuses still appear")
}

func TestInterestByBorrowerRanking(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	a, db := newTestAggregator(t, now)

	aug := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	seedPaidLoan(t, db, "John Doe", 1000, 1100, aug) // 100
	seedPaidLoan(t, db, "John Doe", 500, 550, aug)   // +50
	seedPaidLoan(t, db, "Jane Roe", 2000, 2080, aug) // 80

	ranking, err := a.InterestByBorrower(12, 12)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "John Doe", ranking[0].BorrowerName)
	assert.True(t, ranking[0].Interest.Equal(decimal.NewFromInt(150)),
		"john = %s", ranking[0].Interest)
	assert.Equal(t, "Jane Roe", ranking[1].BorrowerName)
	assert.True(t, ranking[1].Interest.Equal(decimal.NewFromInt(80)))
}
