package unitofwork

import (
	"context"

	"churnguard-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProfileRepository() contract.ProfileRepository
	SnapshotRepository() contract.SnapshotRepository
	ProcessedEventRepository() contract.ProcessedEventRepository
	RiskRepository() contract.RiskRepository
	RecoveryRepository() contract.RecoveryRepository
	SessionRepository() contract.SessionRepository
	SaveRepository() contract.SaveRepository
}
