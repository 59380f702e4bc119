package implementation

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saveRepositoryImpl struct {
	db *gorm.DB
}

func NewSaveRepository(db *gorm.DB) contract.SaveRepository {
	return &saveRepositoryImpl{db: db}
}

func (r *saveRepositoryImpl) Upsert(ctx context.Context, record *entity.SavedCustomerRecord) error {
	m := &model.SavedCustomerRecord{
		Id:              record.Id,
		ProfileId:       record.ProfileId,
		CancelSessionId: record.CancelSessionId,
		SaveType:        string(record.SaveType),
		OriginalMrr:     record.OriginalMrr,
		NewMrr:          record.NewMrr,
		DiscountPct:     record.DiscountPct,
		PauseMonths:     record.PauseMonths,
		PaymentActionId: record.PaymentActionId,
		FeePerMonth:     record.FeePerMonth,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cancel_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"save_type", "original_mrr", "new_mrr", "discount_pct",
			"pause_months", "payment_action_id", "fee_per_month",
		}),
	}).Create(m).Error
}

func (r *saveRepositoryImpl) FindBySessionID(ctx context.Context, sessionId uuid.UUID) (*entity.SavedCustomerRecord, error) {
	var m model.SavedCustomerRecord
	if err := r.db.WithContext(ctx).Where("cancel_session_id = ?", sessionId).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entity.SavedCustomerRecord{
		Id:              m.Id,
		ProfileId:       m.ProfileId,
		CancelSessionId: m.CancelSessionId,
		SaveType:        entity.OfferType(m.SaveType),
		OriginalMrr:     m.OriginalMrr,
		NewMrr:          m.NewMrr,
		DiscountPct:     m.DiscountPct,
		PauseMonths:     m.PauseMonths,
		PaymentActionId: m.PaymentActionId,
		FeePerMonth:     m.FeePerMonth,
		CreatedAt:       m.CreatedAt,
	}, nil
}

func (r *saveRepositoryImpl) SumFeesSince(ctx context.Context, profileId uuid.UUID, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.SavedCustomerRecord{}).
		Select("COALESCE(SUM(fee_per_month), 0)").
		Where("profile_id = ? AND created_at >= ?", profileId, since).
		Scan(&total).Error
	return total, err
}
