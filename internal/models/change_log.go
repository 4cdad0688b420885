package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeLog represents a detected change on a flat's deal or ledger state.
type ChangeLog struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FlatID     string `gorm:"type:varchar(36);not null;index" json:"flat_id"`
	ChangeType string `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue   string `gorm:"type:text" json:"old_value,omitempty"`
	NewValue   string `gorm:"type:text" json:"new_value,omitempty"`

	// Amount is set for money-bearing changes (payment appended, extra work
	// appended, total amount edited).
	Amount *decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount,omitempty"`

	DetectedAt time.Time `gorm:"not null;autoCreateTime;index" json:"detected_at"`
}

// TableName specifies the table name
func (ChangeLog) TableName() string {
	return "change_logs"
}

// ChangeType constants
const (
	ChangeTypeStatus      = "status_changed"
	ChangeTypePayment     = "payment_added"
	ChangeTypeExtraWork   = "extra_work_added"
	ChangeTypeTotalAmount = "total_amount_changed"
	ChangeTypeGenerated   = "flat_generated"
	ChangeTypeReconciled  = "paid_amount_reconciled"
)
