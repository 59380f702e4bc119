package implementation

import (
	"context"
	"errors"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"

	"gorm.io/gorm"
)

type processedEventRepositoryImpl struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) contract.ProcessedEventRepository {
	return &processedEventRepositoryImpl{db: db}
}

func (r *processedEventRepositoryImpl) Exists(ctx context.Context, eventId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProcessedEvent{}).
		Where("event_id = ?", eventId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create records the marker. A primary-key collision means a concurrent
// delivery of the same event id won the insert; it surfaces as
// ErrDuplicateEvent so the caller can report the replay as a success.
func (r *processedEventRepositoryImpl) Create(ctx context.Context, event *entity.ProcessedEvent) error {
	m := &model.ProcessedEvent{
		EventId:   event.EventId,
		EventType: event.EventType,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contract.ErrDuplicateEvent
		}
		return err
	}
	return nil
}
