package contract

import (
	"context"
	"time"

	"churnguard-be/internal/entity"

	"github.com/google/uuid"
)

type SaveRepository interface {
	// Upsert writes the save record keyed on cancel_session_id, so a
	// replayed accept updates in place instead of duplicating.
	Upsert(ctx context.Context, record *entity.SavedCustomerRecord) error
	FindBySessionID(ctx context.Context, sessionId uuid.UUID) (*entity.SavedCustomerRecord, error)
	// SumFeesSince totals fee_per_month for a business's saves created at
	// or after the given time (start of current calendar month).
	SumFeesSince(ctx context.Context, profileId uuid.UUID, since time.Time) (float64, error)
}
