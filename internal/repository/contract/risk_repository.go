package contract

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RiskRepository interface {
	AppendEvent(ctx context.Context, event *entity.ChurnRiskEvent) error
	FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.ChurnRiskEvent, error)
	// CountEventsSince counts one user's events of a type inside a window.
	CountEventsSince(ctx context.Context, userId uuid.UUID, eventType entity.ChurnRiskEventType, since time.Time) (int64, error)
	// UpsertSnapshot fully overwrites the user's snapshot row.
	UpsertSnapshot(ctx context.Context, snapshot *entity.ChurnRiskSnapshot) error
	FindSnapshot(ctx context.Context, userId uuid.UUID) (*entity.ChurnRiskSnapshot, error)
}
