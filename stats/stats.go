// Package stats derives report figures from stored loans. It is read-only:
// a query-and-reshape layer with no state machine, consumed by dashboards
// and report pages.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/loantrack/models"
	"gorm.io/gorm"
)

// Aggregator reads the loan book. The clock is injectable for tests.
type Aggregator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, now: time.Now}
}

// MonthlyPoint is one bucket of a monthly series.
type MonthlyPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// BorrowerInterest ranks a borrower by realized interest.
type BorrowerInterest struct {
	BorrowerName string          `json:"borrower_name"`
	Interest     decimal.Decimal `json:"interest"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a *Aggregator) firstOfMonth() time.Time {
	t := a.now()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// paidLoansSince returns paid loans whose date_paid falls on or after start.
func (a *Aggregator) paidLoansSince(start time.Time) ([]models.Loan, error) {
	var rows []models.Loan
	err := a.db.
		Where("status = ? AND date_paid IS NOT NULL AND date_paid >= ?", models.StatusPaid, start).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("paid loans since %s: %w", start.Format("2006-01-02"), err)
	}
	return rows, nil
}

// MonthlyInterestIncome buckets realized interest by date_paid month over
// the last N months (clamped to 1-36), oldest first. Months with no paid
// loans are zero-filled.
func (a *Aggregator) MonthlyInterestIncome(months int) ([]MonthlyPoint, error) {
	months = clamp(months, 1, 36)
	start := a.firstOfMonth().AddDate(0, -(months - 1), 0)

	rows, err := a.paidLoansSince(start)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]decimal.Decimal)
	for i := range rows {
		key := rows[i].DatePaid.Format("2006-01")
		buckets[key] = buckets[key].Add(rows[i].InterestAmount())
	}

	series := make([]MonthlyPoint, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		value := decimal.Zero
		if v, ok := buckets[m.Format("2006-01")]; ok {
			value = v
		}
		series = append(series, MonthlyPoint{Label: m.Format("Jan 2006"), Value: value})
	}
	return series, nil
}

// StatusDistribution counts loans per persisted status.
func (a *Aggregator) StatusDistribution() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := a.db.Model(&models.Loan{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}

	dist := map[string]int64{
		models.StatusPaid:          0,
		models.StatusUnpaid:        0,
		models.StatusOverdue:       0,
		models.StatusPartiallyPaid: 0,
	}
	for _, r := range rows {
		if _, ok := dist[r.Status]; ok {
			dist[r.Status] = r.Count
		}
	}
	return dist, nil
}

// InterestByBorrower ranks borrowers by realized interest over the last N
// months (clamped 1-36), highest first, at most limit entries (clamped
// 5-100).
func (a *Aggregator) InterestByBorrower(months, limit int) ([]BorrowerInterest, error) {
	months = clamp(months, 1, 36)
	limit = clamp(limit, 5, 100)
	start := a.firstOfMonth().AddDate(0, -(months - 1), 0)

	rows, err := a.paidLoansSince(start)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for i := range rows {
		name := rows[i].BorrowerName
		totals[name] = totals[name].Add(rows[i].InterestAmount())
	}

	ranking := make([]BorrowerInterest, 0, len(totals))
	for name, interest := range totals {
		ranking = append(ranking, BorrowerInterest{BorrowerName: name, Interest: interest})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if !ranking[i].Interest.Equal(ranking[j].Interest) {
			return ranking[i].Interest.GreaterThan(ranking[j].Interest)
		}
		return ranking[i].BorrowerName < ranking[j].BorrowerName
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}
