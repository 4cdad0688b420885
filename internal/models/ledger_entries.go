package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one entry in a flat's append-only payment history.
type Payment struct {
	ID     string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	FlatID string          `gorm:"type:varchar(36);not null;index" json:"flat_id"`
	Amount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaidAt time.Time       `gorm:"type:date;not null" json:"date"`
	Mode   string          `gorm:"type:varchar(50)" json:"mode,omitempty"`

	// Position preserves insertion order for display; the order itself carries
	// no ledger meaning.
	Position  int       `gorm:"not null;index" json:"position"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "flat_payments"
}

// ExtraWork is a buyer-requested customization billed on top of the deal value.
type ExtraWork struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	FlatID      string          `gorm:"type:varchar(36);not null;index" json:"flat_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Cost        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost"`

	// ProofRef is an opaque attachment reference, passed through unchanged.
	ProofRef string `gorm:"type:text" json:"proof,omitempty"`

	Position  int       `gorm:"not null;index" json:"position"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ExtraWork) TableName() string {
	return "flat_extra_works"
}

// Document is an opaque attachment reference kept against a flat.
type Document struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FlatID    string    `gorm:"type:varchar(36);not null;index" json:"flat_id"`
	FileRef   string    `gorm:"type:text;not null" json:"file_ref"`
	Label     string    `gorm:"type:varchar(200)" json:"label,omitempty"`
	Position  int       `gorm:"not null;index" json:"position"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "flat_documents"
}
