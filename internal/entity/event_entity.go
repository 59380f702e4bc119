package entity

import "time"

// ProcessedEvent exists solely to make webhook handling idempotent. One
// row per accepted event id, written in the same transaction as the
// event's side effects; never mutated or deleted afterwards.
type ProcessedEvent struct {
	EventId     string
	EventType   string
	ProcessedAt time.Time
}
