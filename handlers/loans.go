package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yourusername/loantrack/loans"
	"github.com/yourusername/loantrack/middleware"
	"github.com/yourusername/loantrack/validation"
)

type LoanHandler struct {
	Service *loans.Service
}

func NewLoanHandler(service *loans.Service) *LoanHandler {
	return &LoanHandler{Service: service}
}

// respondError translates engine errors into HTTP responses. Unknown
// errors are storage failures: the caller gets a generic message, the
// detail has already been logged by the engine.
func respondError(c *gin.Context, err error) {
	var vErr *loans.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Message, "field": vErr.Field})
	case errors.Is(err, loans.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Loan not found."})
	case errors.Is(err, loans.ErrNoChanges):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No changes to update."})
	case errors.Is(err, loans.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Loan is already marked as paid."})
	case errors.Is(err, loans.ErrOverpayment):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Payment amount exceeds remaining balance."})
	case errors.Is(err, loans.ErrTotalBelowPaid):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "New total payable would be below the amount already paid."})
	case errors.Is(err, loans.ErrDeletePolicy):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Cannot delete paid loans. Contact super admin if needed."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Please try again."})
	}
}

func requireActor(c *gin.Context) (loans.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
	}
	return actor, ok
}

func parseLoanID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid loan id."})
		return 0, false
	}
	return uint(id64), true
}

func parseDateField(c *gin.Context, value *string, field string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	if !validation.Date(*value) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid date format. Use YYYY-MM-DD.", "field": field})
		return nil, false
	}
	t, _ := time.Parse("2006-01-02", *value)
	return &t, true
}

type CreateLoanRequest struct {
	BorrowerName    string  `json:"borrower_name" binding:"required,personname"`
	BorrowerPhone   string  `json:"borrower_phone" binding:"omitempty,phonenum"`
	BorrowerEmail   string  `json:"borrower_email" binding:"omitempty,email"`
	BorrowerAddress string  `json:"borrower_address"`
	LoanAmount      float64 `json:"loan_amount" binding:"required,gt=0"`
	InterestRate    float64 `json:"interest_rate" binding:"percent"`
	DurationDays    int     `json:"duration_days" binding:"required,loandays"`
	Notes           string  `json:"notes"`
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.Service.CreateLoan(actor, loans.CreateLoanInput{
		BorrowerName:    req.BorrowerName,
		BorrowerPhone:   req.BorrowerPhone,
		BorrowerEmail:   req.BorrowerEmail,
		BorrowerAddress: req.BorrowerAddress,
		LoanAmount:      decimal.NewFromFloat(req.LoanAmount),
		InterestRate:    decimal.NewFromFloat(req.InterestRate),
		DurationDays:    req.DurationDays,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       "Loan created successfully.",
		"loan_id":       result.LoanID,
		"total_payable": result.TotalPayable,
		"due_date":      result.DueDate.Format("2006-01-02"),
	})
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	loan, err := h.Service.GetLoan(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	filters := loans.ListFilters{
		Status:       c.Query("status"),
		BorrowerName: c.Query("borrower_name"),
		OverdueOnly:  c.Query("overdue_only") == "true",
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	for _, q := range []struct {
		key  string
		dest **time.Time
	}{
		{"date_from", &filters.DateFrom},
		{"date_to", &filters.DateTo},
	} {
		value := c.Query(q.key)
		t, ok := parseDateField(c, &value, q.key)
		if !ok {
			return
		}
		*q.dest = t
	}

	result, err := h.Service.ListLoans(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type UpdateLoanRequest struct {
	BorrowerName    *string  `json:"borrower_name"`
	BorrowerPhone   *string  `json:"borrower_phone"`
	BorrowerEmail   *string  `json:"borrower_email"`
	BorrowerAddress *string  `json:"borrower_address"`
	LoanAmount      *float64 `json:"loan_amount"`
	InterestRate    *float64 `json:"interest_rate"`
	DurationDays    *int     `json:"duration_days"`
	Notes           *string  `json:"notes"`
}

func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	patch := loans.LoanPatch{
		BorrowerName:    req.BorrowerName,
		BorrowerPhone:   req.BorrowerPhone,
		BorrowerEmail:   req.BorrowerEmail,
		BorrowerAddress: req.BorrowerAddress,
		DurationDays:    req.DurationDays,
		Notes:           req.Notes,
	}
	if req.LoanAmount != nil {
		amount := decimal.NewFromFloat(*req.LoanAmount)
		patch.LoanAmount = &amount
	}
	if req.InterestRate != nil {
		rate := decimal.NewFromFloat(*req.InterestRate)
		patch.InterestRate = &rate
	}

	if err := h.Service.UpdateLoan(actor, id, patch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Loan updated successfully."})
}

type MarkPaidRequest struct {
	Amount      *float64 `json:"amount"`
	PaymentDate *string  `json:"payment_date"`
}

func (h *LoanHandler) MarkLoanAsPaid(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	// Both fields are optional, so a bare settlement call may carry no body.
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	date, ok := parseDateField(c, req.PaymentDate, "payment_date")
	if !ok {
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		a := decimal.NewFromFloat(*req.Amount)
		amount = &a
	}

	if err := h.Service.MarkLoanAsPaid(actor, id, amount, date); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Loan marked as paid successfully."})
}

type AddPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentDate   *string `json:"payment_date"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

func (h *LoanHandler) AddPayment(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	date, ok := parseDateField(c, req.PaymentDate, "payment_date")
	if !ok {
		return
	}

	result, err := h.Service.AddPayment(actor, id, decimal.NewFromFloat(req.Amount), date, req.PaymentMethod, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Payment recorded successfully.",
		"new_status":        result.NewStatus,
		"remaining_balance": result.RemainingBalance,
	})
}

func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteLoan(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Loan deleted successfully."})
}

func (h *LoanHandler) GetLoanPayments(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	if _, err := h.Service.GetLoan(id); err != nil {
		respondError(c, err)
		return
	}
	payments, err := h.Service.GetLoanPayments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *LoanHandler) GetLoanHistory(c *gin.Context) {
	id, ok := parseLoanID(c)
	if !ok {
		return
	}
	if _, err := h.Service.GetLoan(id); err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.Service.GetLoanHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
