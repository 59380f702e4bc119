package contract

import (
	"context"

	"churnguard-be/internal/entity"
)

// ProcessedEventRepository is the idempotency ledger for webhook events.
type ProcessedEventRepository interface {
	// Exists reports whether the event id has already been recorded.
	Exists(ctx context.Context, eventId string) (bool, error)
	// Create records the event id. Must run in the same transaction as
	// the event's side effects so a crash cannot mark an unhandled event
	// as processed.
	Create(ctx context.Context, event *entity.ProcessedEvent) error
}
