package models

import "time"

// History actions.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionPaid         = "paid"
	ActionPaymentAdded = "payment_added"
	ActionDeleted      = "deleted"
)

// LoanHistory is an append-only audit entry; rows are never updated or
// deleted except by cascade with their parent loan.
type LoanHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	LoanID      uint      `gorm:"not null;index" json:"loan_id"`
	Action      string    `gorm:"size:20;not null" json:"action"`
	OldValues   *string   `gorm:"type:text" json:"old_values"`
	NewValues   *string   `gorm:"type:text" json:"new_values"`
	PerformedBy uint      `gorm:"not null" json:"performed_by"`
}

// TableName overrides the table name
func (LoanHistory) TableName() string {
	return "loan_history"
}
