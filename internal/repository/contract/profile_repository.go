package contract

import (
	"context"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.BusinessProfile) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BusinessProfile, error)
	FindByOwner(ctx context.Context, ownerUserId uuid.UUID) (*entity.BusinessProfile, error)
	Update(ctx context.Context, profile *entity.BusinessProfile) error
}
