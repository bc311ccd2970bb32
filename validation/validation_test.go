package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	assert.True(t, Amount(decimal.NewFromFloat(0.01)))
	assert.True(t, Amount(decimal.NewFromInt(1000)))
	assert.False(t, Amount(decimal.Zero))
	assert.False(t, Amount(decimal.NewFromInt(-5)))
}

func TestPercentage(t *testing.T) {
	assert.True(t, Percentage(decimal.Zero))
	assert.True(t, Percentage(decimal.NewFromFloat(12.5)))
	assert.True(t, Percentage(decimal.NewFromInt(100)))
	assert.False(t, Percentage(decimal.NewFromFloat(100.01)))
	assert.False(t, Percentage(decimal.NewFromInt(-1)))
}

func TestDays(t *testing.T) {
	assert.True(t, Days(1))
	assert.True(t, Days(14))
	assert.True(t, Days(3650))
	assert.False(t, Days(0))
	assert.False(t, Days(-7))
	assert.False(t, Days(3651))
}

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Simple", "John Doe", true},
		{"Single Word", "Jo", true},
		{"Too Short", "J", false},
		{"Digits", "John 2nd", false},
		{"Punctuation", "O'Brien", false},
		{"Empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("john@example.com"))
	assert.False(t, Email("not-an-email"))
	assert.False(t, Email(""))
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("+1 555-123-4567"))
	assert.True(t, Phone("(020) 7946 0958"))
	assert.False(t, Phone("12345"))
	assert.False(t, Phone("call me maybe"))
}

func TestDate(t *testing.T) {
	assert.True(t, Date("2026-08-31"))
	assert.False(t, Date("31/08/2026"))
	assert.False(t, Date("2026-13-01"))
	assert.False(t, Date(""))
}

func TestUsername(t *testing.T) {
	assert.True(t, Username("admin_01"))
	assert.False(t, Username("ab"))
	assert.False(t, Username("has space"))
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("secret"))
	assert.False(t, Password("12345"))
}
