package models

import "time"

// DeleteLog records a flat removed through deletion. Deletion is terminal, so
// this log is the only trace left of a removed unit.
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FlatID     string    `gorm:"type:varchar(36);not null;index" json:"flat_id"`
	Block      string    `gorm:"type:varchar(100)" json:"block"`
	Floor      string    `gorm:"type:varchar(10)" json:"floor"`
	FlatNumber string    `gorm:"type:varchar(10)" json:"flat_number"`
	Scope      string    `gorm:"type:varchar(20);not null" json:"scope"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// Deletion scope constants
const (
	DeleteScopeBuilding = "building"
	DeleteScopeFloor    = "floor"
	DeleteScopeFlat     = "flat"
)

// DeleteReason constants
const (
	DeleteReasonCascade = "cascade_folder_delete"
	DeleteReasonManual  = "manual_deletion"
)
