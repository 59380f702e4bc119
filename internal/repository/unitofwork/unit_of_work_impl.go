package unitofwork

import (
	"context"
	"fmt"

	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProfileRepository() contract.ProfileRepository {
	return implementation.NewProfileRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SnapshotRepository() contract.SnapshotRepository {
	return implementation.NewSnapshotRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProcessedEventRepository() contract.ProcessedEventRepository {
	return implementation.NewProcessedEventRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RiskRepository() contract.RiskRepository {
	return implementation.NewRiskRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RecoveryRepository() contract.RecoveryRepository {
	return implementation.NewRecoveryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionRepository() contract.SessionRepository {
	return implementation.NewSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SaveRepository() contract.SaveRepository {
	return implementation.NewSaveRepository(u.getDB())
}
