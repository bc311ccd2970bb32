package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only record of money received against a loan.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	LoanID        uint            `gorm:"not null;index" json:"loan_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod string          `gorm:"size:50" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	RecordedBy    uint            `gorm:"not null" json:"recorded_by"`
}

// TableName overrides the table name
func (Payment) TableName() string {
	return "payments"
}
