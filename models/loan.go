package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan statuses. Overdue is a display status materialized lazily on read;
// see loans.MaterializeStatus.
const (
	StatusUnpaid        = "unpaid"
	StatusPartiallyPaid = "partially_paid"
	StatusOverdue       = "overdue"
	StatusPaid          = "paid"
)

type Loan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	BorrowerName    string          `gorm:"size:100;not null" json:"borrower_name"`
	BorrowerPhone   string          `gorm:"size:20" json:"borrower_phone"`
	BorrowerEmail   string          `gorm:"size:255" json:"borrower_email"`
	BorrowerAddress string          `gorm:"type:text" json:"borrower_address"`
	LoanAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"loan_amount"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	TotalPayable    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_payable"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Status          string          `gorm:"size:20;not null;default:'unpaid';index" json:"status"`
	StartDate       time.Time       `gorm:"type:date;not null" json:"start_date"`
	DueDate         time.Time       `gorm:"type:date;not null" json:"due_date"`
	DatePaid        *time.Time      `gorm:"type:date" json:"date_paid"`
	CreatedBy       uint            `gorm:"not null" json:"created_by"`
	Notes           string          `gorm:"type:text" json:"notes"`

	Payments []Payment     `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	History  []LoanHistory `gorm:"constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// TableName overrides the table name
func (Loan) TableName() string {
	return "loans"
}

// RemainingBalance is total_payable minus amount_paid.
func (l *Loan) RemainingBalance() decimal.Decimal {
	return l.TotalPayable.Sub(l.AmountPaid)
}

// InterestAmount is the fixed simple interest baked into total_payable.
func (l *Loan) InterestAmount() decimal.Decimal {
	return l.TotalPayable.Sub(l.LoanAmount)
}
