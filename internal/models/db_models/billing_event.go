package db_models

import "gorm.io/datatypes"

// BillingEvent records every processor webhook event that was handled, so a
// redelivered event is acknowledged without being applied twice.
type BillingEvent struct {
	BaseModel
	ProviderEventID string         `gorm:"uniqueIndex;not null"`
	Type            string         `gorm:"index"`
	Payload         datatypes.JSON `gorm:"type:json"`
	ProcessedAt     int64
}
