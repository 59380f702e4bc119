package implementation

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, session *entity.CancelSession) error {
	m := &model.CancelSession{
		Id:                 session.Id,
		ProfileId:          session.ProfileId,
		CustomerRef:        session.CustomerRef,
		SubscriptionRef:    session.SubscriptionRef,
		SessionToken:       session.SessionToken,
		Status:             string(session.Status),
		ExitReason:         session.ExitReason,
		CustomFeedback:     session.CustomFeedback,
		OfferTypePresented: string(session.OfferTypePresented),
		OfferAccepted:      session.OfferAccepted,
		StartedAt:          session.StartedAt,
		CompletedAt:        session.CompletedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *sessionRepositoryImpl) FindByToken(ctx context.Context, token string) (*entity.CancelSession, error) {
	var m model.CancelSession
	if err := r.db.WithContext(ctx).Where("session_token = ?", token).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapToEntity(&m), nil
}

func (r *sessionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancelSession, error) {
	var m model.CancelSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapToEntity(&m), nil
}

func (r *sessionRepositoryImpl) CompleteSurvey(ctx context.Context, id uuid.UUID, exitReason, customFeedback string, offerPresented entity.OfferType) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CancelSession{}).
		Where("id = ? AND status = ?", id, string(entity.SessionStatusStarted)).
		Updates(map[string]interface{}{
			"status":               string(entity.SessionStatusSurveyCompleted),
			"exit_reason":          exitReason,
			"custom_feedback":      customFeedback,
			"offer_type_presented": string(offerPresented),
		})
	return result.RowsAffected, result.Error
}

func (r *sessionRepositoryImpl) Transition(ctx context.Context, id uuid.UUID, from, to entity.CancelSessionStatus, offerAccepted *bool, completedAt *time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status": string(to),
	}
	if offerAccepted != nil {
		updates["offer_accepted"] = *offerAccepted
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	result := r.db.WithContext(ctx).
		Model(&model.CancelSession{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *sessionRepositoryImpl) mapToEntity(m *model.CancelSession) *entity.CancelSession {
	return &entity.CancelSession{
		Id:                 m.Id,
		ProfileId:          m.ProfileId,
		CustomerRef:        m.CustomerRef,
		SubscriptionRef:    m.SubscriptionRef,
		SessionToken:       m.SessionToken,
		Status:             entity.CancelSessionStatus(m.Status),
		ExitReason:         m.ExitReason,
		CustomFeedback:     m.CustomFeedback,
		OfferTypePresented: entity.OfferType(m.OfferTypePresented),
		OfferAccepted:      m.OfferAccepted,
		StartedAt:          m.StartedAt,
		CompletedAt:        m.CompletedAt,
	}
}
