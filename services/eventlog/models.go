package eventlog

import (
	"time"

	"gorm.io/gorm"
)

// Record is one persisted engine event.
type Record struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Type         string `gorm:"index;not null"`
	SettlementID string `gorm:"index"`
	TokenID      string `gorm:"index"`
	Attributes   string `gorm:"type:text;not null"`
	EmittedAt    time.Time
}

// TableName pins the table name regardless of the naming strategy.
func (Record) TableName() string { return "auction_events" }

// AutoMigrate creates or updates the event log schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}
