// Package loans implements the loan lifecycle engine: creation,
// recalculation on edit, the payment state machine, policy-gated deletion
// and audit history.
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/loantrack/models"
	"github.com/yourusername/loantrack/validation"
	"gorm.io/gorm"
)

// Service holds the engine's dependencies. The clock is injectable so the
// date arithmetic is testable.
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// CreateLoanInput carries the fields accepted at loan creation. Only
// BorrowerName and the financial fields are required.
type CreateLoanInput struct {
	BorrowerName    string
	BorrowerPhone   string
	BorrowerEmail   string
	BorrowerAddress string
	LoanAmount      decimal.Decimal
	InterestRate    decimal.Decimal
	DurationDays    int
	Notes           string
}

type CreateLoanResult struct {
	LoanID       uint            `json:"loan_id"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	DueDate      time.Time       `json:"due_date"`
}

type AddPaymentResult struct {
	NewStatus        string          `json:"new_status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ListFilters narrows ListLoans. Zero values mean "no filter".
type ListFilters struct {
	Status       string
	BorrowerName string
	DateFrom     *time.Time
	DateTo       *time.Time
	OverdueOnly  bool
	Limit        int
}

func validateCreateInput(in *CreateLoanInput) error {
	if !validation.Name(in.BorrowerName) {
		return &ValidationError{Field: "borrower_name", Message: "Invalid borrower name format."}
	}
	if !validation.Amount(in.LoanAmount) {
		return &ValidationError{Field: "loan_amount", Message: "Invalid loan amount. Must be greater than 0."}
	}
	if !validation.Percentage(in.InterestRate) {
		return &ValidationError{Field: "interest_rate", Message: "Invalid interest rate. Must be between 0 and 100."}
	}
	if !validation.Days(in.DurationDays) {
		return &ValidationError{Field: "duration_days", Message: "Invalid duration. Must be between 1 and 3650 days."}
	}
	if in.BorrowerEmail != "" && !validation.Email(in.BorrowerEmail) {
		return &ValidationError{Field: "borrower_email", Message: "Invalid email format."}
	}
	if in.BorrowerPhone != "" && !validation.Phone(in.BorrowerPhone) {
		return &ValidationError{Field: "borrower_phone", Message: "Invalid phone number format."}
	}
	return nil
}

func validatePatch(p LoanPatch) error {
	if p.BorrowerName != nil && !validation.Name(*p.BorrowerName) {
		return &ValidationError{Field: "borrower_name", Message: "Invalid borrower name format."}
	}
	if p.LoanAmount != nil && !validation.Amount(*p.LoanAmount) {
		return &ValidationError{Field: "loan_amount", Message: "Invalid loan amount."}
	}
	if p.InterestRate != nil && !validation.Percentage(*p.InterestRate) {
		return &ValidationError{Field: "interest_rate", Message: "Invalid interest rate."}
	}
	if p.DurationDays != nil && !validation.Days(*p.DurationDays) {
		return &ValidationError{Field: "duration_days", Message: "Invalid duration."}
	}
	if p.BorrowerEmail != nil && *p.BorrowerEmail != "" && !validation.Email(*p.BorrowerEmail) {
		return &ValidationError{Field: "borrower_email", Message: "Invalid email format."}
	}
	if p.BorrowerPhone != nil && *p.BorrowerPhone != "" && !validation.Phone(*p.BorrowerPhone) {
		return &ValidationError{Field: "borrower_phone", Message: "Invalid phone number format."}
	}
	return nil
}

// CreateLoan validates the input, computes total payable and the due date,
// persists the loan and appends a "created" history entry.
func (s *Service) CreateLoan(actor Actor, in CreateLoanInput) (*CreateLoanResult, error) {
	if err := validateCreateInput(&in); err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	loan := models.Loan{
		BorrowerName:    in.BorrowerName,
		BorrowerPhone:   in.BorrowerPhone,
		BorrowerEmail:   in.BorrowerEmail,
		BorrowerAddress: in.BorrowerAddress,
		LoanAmount:      in.LoanAmount,
		InterestRate:    in.InterestRate,
		DurationDays:    in.DurationDays,
		TotalPayable:    TotalPayable(in.LoanAmount, in.InterestRate),
		AmountPaid:      decimal.Zero,
		Status:          models.StatusUnpaid,
		StartDate:       today,
		DueDate:         today.AddDate(0, 0, in.DurationDays),
		CreatedBy:       actor.ID,
		Notes:           in.Notes,
	}
	if err := s.db.Create(&loan).Error; err != nil {
		s.log.WithError(err).Error("loan creation failed")
		return nil, fmt.Errorf("create loan: %w", err)
	}

	s.logHistory(loan.ID, models.ActionCreated, actor, nil, SnapshotLoan(&loan))

	return &CreateLoanResult{
		LoanID:       loan.ID,
		TotalPayable: loan.TotalPayable,
		DueDate:      loan.DueDate,
	}, nil
}

// GetLoan loads one loan, materializing the overdue status at the read
// boundary.
func (s *Service) GetLoan(id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		s.log.WithError(err).Error("loan lookup failed")
		return nil, fmt.Errorf("get loan: %w", err)
	}
	s.materialize(&loan)
	return &loan, nil
}

// ListLoans returns loans matching the filters, newest first, with overdue
// statuses materialized.
func (s *Service) ListLoans(f ListFilters) ([]models.Loan, error) {
	q := s.db.Model(&models.Loan{}).Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BorrowerName != "" {
		q = q.Where("borrower_name LIKE ?", "%"+f.BorrowerName+"%")
	}
	if f.DateFrom != nil {
		q = q.Where("start_date >= ?", dateOnly(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("start_date <= ?", dateOnly(*f.DateTo))
	}
	if f.OverdueOnly {
		q = q.Where("due_date < ? AND status != ?", dateOnly(s.now()), models.StatusPaid)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var result []models.Loan
	if err := q.Find(&result).Error; err != nil {
		s.log.WithError(err).Error("loan list failed")
		return nil, fmt.Errorf("list loans: %w", err)
	}
	for i := range result {
		s.materialize(&result[i])
	}
	return result, nil
}

// materialize flips an unpaid, past-due loan to overdue in place. The
// persisted flip is a best-effort cache write: both racing readers compute
// the same value, so losing it costs nothing.
func (s *Service) materialize(loan *models.Loan) {
	status := MaterializeStatus(loan, s.now())
	if status == loan.Status {
		return
	}
	loan.Status = status
	if err := s.db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("status", status).Error; err != nil {
		s.log.WithError(err).WithField("loan_id", loan.ID).Warn("failed to persist overdue status")
	}
}

// UpdateLoan applies a validated patch to an existing loan, recomputing the
// derived columns, and writes only the changed columns in one statement.
func (s *Service) UpdateLoan(actor Actor, id uint, patch LoanPatch) error {
	loan, err := s.GetLoan(id)
	if err != nil {
		return err
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	updated, changed := ComputeUpdate(*loan, patch)
	if len(changed) == 0 {
		return ErrNoChanges
	}
	if updated.TotalPayable.LessThan(loan.AmountPaid) {
		return ErrTotalBelowPaid
	}

	values := make(map[string]any, len(changed))
	for _, col := range changed {
		values[col] = columnValue(&updated, col)
	}
	if err := s.db.Model(&models.Loan{}).Where("id = ?", id).Updates(values).Error; err != nil {
		s.log.WithError(err).WithField("loan_id", id).Error("loan update failed")
		return fmt.Errorf("update loan: %w", err)
	}

	s.logHistory(id, models.ActionUpdated, actor, SnapshotLoan(loan), SnapshotLoan(&updated))
	return nil
}

// MarkLoanAsPaid settles a loan in full in one step, independent of the
// partial-payment accumulator. Amount defaults to the full total payable
// and the payment date to today.
func (s *Service) MarkLoanAsPaid(actor Actor, id uint, amount *decimal.Decimal, date *time.Time) error {
	loan, err := s.GetLoan(id)
	if err != nil {
		return err
	}
	if loan.Status == models.StatusPaid {
		return ErrAlreadyPaid
	}

	paid := loan.TotalPayable
	if amount != nil {
		if !validation.Amount(*amount) {
			return &ValidationError{Field: "amount", Message: "Invalid payment amount."}
		}
		paid = *amount
	}
	payDate := dateOnly(s.now())
	if date != nil {
		payDate = dateOnly(*date)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Loan{}).Where("id = ?", id).Updates(map[string]any{
			"status":      models.StatusPaid,
			"amount_paid": paid,
			"date_paid":   payDate,
		}).Error; err != nil {
			return err
		}
		payment := models.Payment{
			LoanID:      id,
			Amount:      paid,
			PaymentDate: payDate,
			RecordedBy:  actor.ID,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		s.log.WithError(err).WithField("loan_id", id).Error("mark paid failed")
		return fmt.Errorf("mark loan paid: %w", err)
	}

	s.logHistory(id, models.ActionPaid, actor, SnapshotLoan(loan), Snapshot{
		"amount_paid":  paid.StringFixed(2),
		"payment_date": payDate.Format(dateLayout),
		"status":       models.StatusPaid,
	})
	return nil
}

// AddPayment records a partial (or final) payment. The payment insert and
// the balance/status update run in one transaction; the balance itself is
// written as a guarded relative increment so two concurrent payments can
// never both pass the overpayment check on a stale balance, and amount_paid
// always equals the sum of recorded payments.
func (s *Service) AddPayment(actor Actor, id uint, amount decimal.Decimal, date *time.Time, method, notes string) (*AddPaymentResult, error) {
	loan, err := s.GetLoan(id)
	if err != nil {
		return nil, err
	}
	if loan.Status == models.StatusPaid {
		return nil, ErrAlreadyPaid
	}
	if !validation.Amount(amount) {
		return nil, &ValidationError{Field: "amount", Message: "Invalid payment amount."}
	}

	payDate := dateOnly(s.now())
	if date != nil {
		payDate = dateOnly(*date)
	}

	var result AddPaymentResult
	var newPaid decimal.Decimal
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The balance write is a relative increment guarded in the same
		// statement, so the overpayment check is evaluated against the
		// committed balance even when another payment landed after our
		// read. A failed guard affects zero rows.
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND amount_paid + ? <= total_payable", id, amount).
			Update("amount_paid", gorm.Expr("amount_paid + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Loan
			if err := tx.First(&current, id).Error; err != nil {
				return err
			}
			if current.Status == models.StatusPaid {
				return ErrAlreadyPaid
			}
			return ErrOverpayment
		}

		var current models.Loan
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		newPaid = current.AmountPaid

		payment := models.Payment{
			LoanID:        id,
			Amount:        amount,
			PaymentDate:   payDate,
			PaymentMethod: method,
			Notes:         notes,
			RecordedBy:    actor.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		newStatus := models.StatusPartiallyPaid
		values := map[string]any{"status": newStatus}
		if newPaid.GreaterThanOrEqual(current.TotalPayable) {
			newStatus = models.StatusPaid
			values["status"] = newStatus
			values["date_paid"] = payDate
		}
		if err := tx.Model(&models.Loan{}).Where("id = ?", id).Updates(values).Error; err != nil {
			return err
		}

		result = AddPaymentResult{
			NewStatus:        newStatus,
			RemainingBalance: current.TotalPayable.Sub(newPaid),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrOverpayment) {
			return nil, err
		}
		s.log.WithError(err).WithField("loan_id", id).Error("payment failed")
		return nil, fmt.Errorf("add payment: %w", err)
	}

	s.logHistory(id, models.ActionPaymentAdded, actor, SnapshotLoan(loan), Snapshot{
		"payment_amount": amount.StringFixed(2),
		"payment_date":   payDate.Format(dateLayout),
		"new_total_paid": newPaid.StringFixed(2),
		"new_status":     result.NewStatus,
	})
	return &result, nil
}

// DeleteLoan removes a loan. Settled loans are protected: only a super
// admin may delete a paid loan. The row delete cascades to payments and
// history at the storage layer.
func (s *Service) DeleteLoan(actor Actor, id uint) error {
	loan, err := s.GetLoan(id)
	if err != nil {
		return err
	}
	if loan.Status == models.StatusPaid && !actor.IsSuperAdmin() {
		return ErrDeletePolicy
	}

	s.logHistory(id, models.ActionDeleted, actor, SnapshotLoan(loan), nil)

	if err := s.db.Delete(&models.Loan{}, id).Error; err != nil {
		s.log.WithError(err).WithField("loan_id", id).Error("loan delete failed")
		return fmt.Errorf("delete loan: %w", err)
	}
	return nil
}

// GetLoanPayments returns a loan's payments, newest first.
func (s *Service) GetLoanPayments(id uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("loan_id = ?", id).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error; err != nil {
		s.log.WithError(err).Error("payment list failed")
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// GetLoanHistory returns a loan's audit trail, newest first.
func (s *Service) GetLoanHistory(id uint) ([]models.LoanHistory, error) {
	var entries []models.LoanHistory
	if err := s.db.Where("loan_id = ?", id).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		s.log.WithError(err).Error("history list failed")
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
