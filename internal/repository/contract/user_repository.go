package contract

import (
	"context"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	// FindByEmail is the identity bridge: processor customer → internal user.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}
