package model

import "time"

// ProcessedEvent rows are the idempotency ledger. The primary key IS the
// processor event id; a duplicate delivery fails the insert and is
// reported as already processed.
type ProcessedEvent struct {
	EventId     string    `gorm:"type:varchar(255);primaryKey"`
	EventType   string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"autoCreateTime"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
