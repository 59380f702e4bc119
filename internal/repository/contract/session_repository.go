package contract

import (
	"context"
	"time"

	"churnguard-be/internal/entity"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.CancelSession) error
	FindByToken(ctx context.Context, token string) (*entity.CancelSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CancelSession, error)

	// CompleteSurvey moves started → survey_completed, persisting the
	// survey answers and the offer presented. Conditional on the current
	// status; returns rows updated.
	CompleteSurvey(ctx context.Context, id uuid.UUID, exitReason, customFeedback string, offerPresented entity.OfferType) (int64, error)

	// Transition performs a status CAS from → to, stamping completed_at
	// and offer_accepted where provided. Returns rows updated; 0 means
	// the session had already moved.
	Transition(ctx context.Context, id uuid.UUID, from, to entity.CancelSessionStatus, offerAccepted *bool, completedAt *time.Time) (int64, error)
}
