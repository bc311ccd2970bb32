package loans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/loantrack/models"
)

func TestMaterializeStatus(t *testing.T) {
	today := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		due    time.Time
		want   string
	}{
		{"Unpaid Past Due", models.StatusUnpaid, today.AddDate(0, 0, -1), models.StatusOverdue},
		{"Unpaid Due Today", models.StatusUnpaid, dateOnly(today), models.StatusUnpaid},
		{"Unpaid Future Due", models.StatusUnpaid, today.AddDate(0, 0, 7), models.StatusUnpaid},
		{"Partially Paid Past Due", models.StatusPartiallyPaid, today.AddDate(0, 0, -1), models.StatusPartiallyPaid},
		{"Paid Past Due", models.StatusPaid, today.AddDate(0, 0, -30), models.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &models.Loan{Status: tt.status, DueDate: dateOnly(tt.due)}
			assert.Equal(t, tt.want, MaterializeStatus(loan, today))
			// The loan itself is never mutated.
			assert.Equal(t, tt.status, loan.Status)
		})
	}
}

func TestMaterializeStatusIdempotent(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	loan := &models.Loan{Status: models.StatusUnpaid, DueDate: today.AddDate(0, 0, -5)}

	first := MaterializeStatus(loan, today)
	loan.Status = first
	second := MaterializeStatus(loan, today)
	assert.Equal(t, models.StatusOverdue, first)
	assert.Equal(t, first, second)
}

func TestTotalPayable(t *testing.T) {
	tests := []struct {
		amount float64
		rate   float64
		want   string
	}{
		{1000, 10, "1100"},
		{1000, 0, "1000"},
		{333.33, 15, "383.33"},
		{250, 12.5, "281.25"},
	}
	for _, tt := range tests {
		got := TotalPayable(decimal.NewFromFloat(tt.amount), decimal.NewFromFloat(tt.rate))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"TotalPayable(%v, %v) = %s, want %s", tt.amount, tt.rate, got, tt.want)
	}
}
