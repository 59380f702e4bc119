package entity

import (
	"time"

	"github.com/google/uuid"
)

// SavedCustomerRecord is the outcome of a successful save. Exactly one
// record per cancel session; writes are upserts keyed on the session id
// so replayed accepts cannot duplicate it.
type SavedCustomerRecord struct {
	Id              uuid.UUID
	ProfileId       uuid.UUID
	CancelSessionId uuid.UUID
	SaveType        OfferType
	OriginalMrr     float64
	NewMrr          float64
	DiscountPct     *int
	PauseMonths     *int
	PaymentActionId *string // null when the processor call failed or was simulated
	FeePerMonth     float64
	CreatedAt       time.Time
}
