package loans

import (
	"encoding/json"
	"strconv"

	"github.com/yourusername/loantrack/models"
)

// Snapshot is a field->value record captured in history entries, stored as
// JSON in loan_history.old_values / new_values.
type Snapshot map[string]string

// SnapshotLoan captures every user-visible loan field.
func SnapshotLoan(l *models.Loan) Snapshot {
	s := Snapshot{
		"borrower_name":    l.BorrowerName,
		"borrower_phone":   l.BorrowerPhone,
		"borrower_email":   l.BorrowerEmail,
		"borrower_address": l.BorrowerAddress,
		"loan_amount":      l.LoanAmount.StringFixed(2),
		"interest_rate":    l.InterestRate.StringFixed(2),
		"duration_days":    strconv.Itoa(l.DurationDays),
		"total_payable":    l.TotalPayable.StringFixed(2),
		"amount_paid":      l.AmountPaid.StringFixed(2),
		"status":           l.Status,
		"start_date":       l.StartDate.Format(dateLayout),
		"due_date":         l.DueDate.Format(dateLayout),
		"notes":            l.Notes,
	}
	if l.DatePaid != nil {
		s["date_paid"] = l.DatePaid.Format(dateLayout)
	}
	return s
}

// logHistory appends one audit entry. A history write failure is logged and
// swallowed; it never fails the operation that produced it.
func (s *Service) logHistory(loanID uint, action string, actor Actor, oldVals, newVals Snapshot) {
	entry := models.LoanHistory{
		LoanID:      loanID,
		Action:      action,
		PerformedBy: actor.ID,
	}
	if oldVals != nil {
		b, _ := json.Marshal(oldVals)
		v := string(b)
		entry.OldValues = &v
	}
	if newVals != nil {
		b, _ := json.Marshal(newVals)
		v := string(b)
		entry.NewValues = &v
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.log.WithError(err).WithField("loan_id", loanID).Warn("failed to write loan history")
	}
}
