// Package validation holds the typed field validators shared by every
// mutation path. Validators are pure predicates: a business reject is a
// false return, never an error or panic.
package validation

import (
	"net/mail"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDurationDays caps loan duration at ten years.
const MaxDurationDays = 3650

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var (
	nameRe     = regexp.MustCompile(`^[a-zA-Z\s]{2,100}$`)
	phoneRe    = regexp.MustCompile(`^[+]?[\d\s\-\(\)]{10,20}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
)

// Amount accepts values strictly greater than zero.
func Amount(v decimal.Decimal) bool {
	return v.IsPositive()
}

// Percentage accepts values in [0, 100].
func Percentage(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(decimal.NewFromInt(100))
}

// Days accepts durations in (0, MaxDurationDays].
func Days(v int) bool {
	return v > 0 && v <= MaxDurationDays
}

// Name accepts 2-100 characters, letters and spaces only.
func Name(s string) bool {
	return nameRe.MatchString(s)
}

// Email accepts RFC 5322 addresses. Empty is rejected; callers skip the
// check for optional fields.
func Email(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// Phone accepts 10-20 digits with an optional leading + and common
// separators.
func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

// Date accepts YYYY-MM-DD.
func Date(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Username accepts 3-50 characters: letters, digits and underscores.
func Username(s string) bool {
	return usernameRe.MatchString(s)
}

// Password accepts any string of at least MinPasswordLength characters.
func Password(s string) bool {
	return len(s) >= MinPasswordLength
}
