package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flat represents one saleable unit in the inventory.
type Flat struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID string `gorm:"type:varchar(36);not null;index" json:"project_id"`

	// Position in the hierarchy. Immutable after generation: attribute edits
	// never move a flat between folders.
	Block      string `gorm:"type:varchar(100);not null;index:idx_block_floor" json:"block"`
	Floor      string `gorm:"type:varchar(10);not null;index:idx_block_floor,priority:2" json:"floor"`
	FlatNumber string `gorm:"type:varchar(10);not null" json:"flat_number"`

	Type FlatType         `gorm:"type:varchar(20);not null;default:'1BHK'" json:"type"`
	Area *decimal.Decimal `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Rate *decimal.Decimal `gorm:"type:decimal(15,2)" json:"rate,omitempty"`

	Status FlatStatus `gorm:"type:varchar(20);not null;default:'Available';index" json:"status"`

	// Buyer fields are only meaningful when Status != Available. They are kept
	// on a move back to Available so a mistaken status change loses nothing.
	BuyerName    string `gorm:"type:varchar(200)" json:"buyer_name,omitempty"`
	BuyerAddress string `gorm:"type:text" json:"buyer_address,omitempty"`
	BuyerMobile  string `gorm:"type:varchar(20)" json:"buyer_mobile,omitempty"`

	TotalAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`

	// PaidAmount caches the sum over Payments. For legacy rows with no payment
	// history it is the authoritative value.
	PaidAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`

	Payments   []Payment   `gorm:"foreignKey:FlatID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	ExtraWorks []ExtraWork `gorm:"foreignKey:FlatID;constraint:OnDelete:CASCADE" json:"extra_works,omitempty"`
	Documents  []Document  `gorm:"foreignKey:FlatID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// FlatStatus drives which ledger fields are shown and required.
type FlatStatus string

const (
	FlatStatusAvailable FlatStatus = "Available"
	FlatStatusBooked    FlatStatus = "Booked"
	FlatStatusSold      FlatStatus = "Sold"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s FlatStatus) bool {
	switch s {
	case FlatStatusAvailable, FlatStatusBooked, FlatStatusSold:
		return true
	}
	return false
}

// FlatType is the unit layout category.
type FlatType string

const (
	FlatType1BHK      FlatType = "1BHK"
	FlatType2BHK      FlatType = "2BHK"
	FlatType3BHK      FlatType = "3BHK"
	FlatTypePenthouse FlatType = "Penthouse"
)

// ValidType reports whether t is one of the known unit types.
func ValidType(t FlatType) bool {
	switch t {
	case FlatType1BHK, FlatType2BHK, FlatType3BHK, FlatTypePenthouse:
		return true
	}
	return false
}

// TableName specifies the table name
func (Flat) TableName() string {
	return "flats"
}

// IsAvailable reports whether the flat can still be booked.
func (f *Flat) IsAvailable() bool {
	return f.Status == FlatStatusAvailable
}

// HasLedger reports whether the full ledger (payments, extra work, documents)
// applies to this flat.
func (f *Flat) HasLedger() bool {
	return f.Status == FlatStatusSold
}
