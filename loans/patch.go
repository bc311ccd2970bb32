package loans

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/loantrack/models"
)

// LoanPatch is a partial update to a loan; nil fields are left untouched.
type LoanPatch struct {
	BorrowerName    *string
	BorrowerPhone   *string
	BorrowerEmail   *string
	BorrowerAddress *string
	LoanAmount      *decimal.Decimal
	InterestRate    *decimal.Decimal
	DurationDays    *int
	Notes           *string
}

// ComputeUpdate applies a patch to a copy of the existing loan and reports
// which columns changed. total_payable is recomputed from the effective
// values whenever the patch carries loan_amount or interest_rate; due_date
// is recomputed from the stored start_date (never from today) whenever the
// patch carries duration_days. Pure: neither argument is mutated.
func ComputeUpdate(existing models.Loan, patch LoanPatch) (models.Loan, []string) {
	updated := existing
	var changed []string

	if patch.BorrowerName != nil && *patch.BorrowerName != existing.BorrowerName {
		updated.BorrowerName = *patch.BorrowerName
		changed = append(changed, "borrower_name")
	}
	if patch.BorrowerPhone != nil && *patch.BorrowerPhone != existing.BorrowerPhone {
		updated.BorrowerPhone = *patch.BorrowerPhone
		changed = append(changed, "borrower_phone")
	}
	if patch.BorrowerEmail != nil && *patch.BorrowerEmail != existing.BorrowerEmail {
		updated.BorrowerEmail = *patch.BorrowerEmail
		changed = append(changed, "borrower_email")
	}
	if patch.BorrowerAddress != nil && *patch.BorrowerAddress != existing.BorrowerAddress {
		updated.BorrowerAddress = *patch.BorrowerAddress
		changed = append(changed, "borrower_address")
	}
	if patch.LoanAmount != nil && !patch.LoanAmount.Equal(existing.LoanAmount) {
		updated.LoanAmount = *patch.LoanAmount
		changed = append(changed, "loan_amount")
	}
	if patch.InterestRate != nil && !patch.InterestRate.Equal(existing.InterestRate) {
		updated.InterestRate = *patch.InterestRate
		changed = append(changed, "interest_rate")
	}
	if patch.DurationDays != nil && *patch.DurationDays != existing.DurationDays {
		updated.DurationDays = *patch.DurationDays
		changed = append(changed, "duration_days")
	}
	if patch.Notes != nil && *patch.Notes != existing.Notes {
		updated.Notes = *patch.Notes
		changed = append(changed, "notes")
	}

	if patch.LoanAmount != nil || patch.InterestRate != nil {
		total := TotalPayable(updated.LoanAmount, updated.InterestRate)
		if !total.Equal(existing.TotalPayable) {
			updated.TotalPayable = total
			changed = append(changed, "total_payable")
		}
	}
	if patch.DurationDays != nil {
		due := dateOnly(existing.StartDate).AddDate(0, 0, updated.DurationDays)
		if !due.Equal(existing.DueDate) {
			updated.DueDate = due
			changed = append(changed, "due_date")
		}
	}

	return updated, changed
}

// columnValue maps a changed column name back to its value on the updated
// row, for the single update statement.
func columnValue(l *models.Loan, col string) any {
	switch col {
	case "borrower_name":
		return l.BorrowerName
	case "borrower_phone":
		return l.BorrowerPhone
	case "borrower_email":
		return l.BorrowerEmail
	case "borrower_address":
		return l.BorrowerAddress
	case "loan_amount":
		return l.LoanAmount
	case "interest_rate":
		return l.InterestRate
	case "duration_days":
		return l.DurationDays
	case "notes":
		return l.Notes
	case "total_payable":
		return l.TotalPayable
	case "due_date":
		return l.DueDate
	}
	return nil
}
