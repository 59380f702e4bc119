package implementation

import (
	"context"
	"encoding/json"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type riskRepositoryImpl struct {
	db *gorm.DB
}

func NewRiskRepository(db *gorm.DB) contract.RiskRepository {
	return &riskRepositoryImpl{db: db}
}

func (r *riskRepositoryImpl) AppendEvent(ctx context.Context, event *entity.ChurnRiskEvent) error {
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}
	m := &model.ChurnRiskEvent{
		Id:         event.Id,
		UserId:     event.UserId,
		EventType:  string(event.EventType),
		Severity:   event.Severity,
		OccurredAt: event.OccurredAt,
		Metadata:   datatypes.JSON(meta),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *riskRepositoryImpl) FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.ChurnRiskEvent, error) {
	var models []model.ChurnRiskEvent
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]*entity.ChurnRiskEvent, 0, len(models))
	for i := range models {
		events = append(events, r.mapToEntity(&models[i]))
	}
	return events, nil
}

func (r *riskRepositoryImpl) CountEventsSince(ctx context.Context, userId uuid.UUID, eventType entity.ChurnRiskEventType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChurnRiskEvent{}).
		Where("user_id = ? AND event_type = ? AND occurred_at >= ?", userId, string(eventType), since).
		Count(&count).Error
	return count, err
}

func (r *riskRepositoryImpl) UpsertSnapshot(ctx context.Context, snapshot *entity.ChurnRiskSnapshot) error {
	reasons, err := json.Marshal(snapshot.TopReasons)
	if err != nil {
		return err
	}
	m := &model.ChurnRiskSnapshot{
		UserId:     snapshot.UserId,
		Score:      snapshot.Score,
		TopReasons: datatypes.JSON(reasons),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "top_reasons", "updated_at"}),
	}).Create(m).Error
}

func (r *riskRepositoryImpl) FindSnapshot(ctx context.Context, userId uuid.UUID) (*entity.ChurnRiskSnapshot, error) {
	var m model.ChurnRiskSnapshot
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	snap := &entity.ChurnRiskSnapshot{
		UserId:    m.UserId,
		Score:     m.Score,
		UpdatedAt: m.UpdatedAt,
	}
	_ = json.Unmarshal(m.TopReasons, &snap.TopReasons)
	return snap, nil
}

func (r *riskRepositoryImpl) mapToEntity(m *model.ChurnRiskEvent) *entity.ChurnRiskEvent {
	e := &entity.ChurnRiskEvent{
		Id:         m.Id,
		UserId:     m.UserId,
		EventType:  entity.ChurnRiskEventType(m.EventType),
		Severity:   m.Severity,
		OccurredAt: m.OccurredAt,
	}
	_ = json.Unmarshal(m.Metadata, &e.Metadata)
	return e
}
