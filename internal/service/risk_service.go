package service

import (
	"context"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRiskService appends classified churn signals and keeps the per-user
// score snapshot current. Append and recompute run inside the caller's
// transaction so a webhook delivery commits both or neither.
type IRiskService interface {
	AppendAndRecompute(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, newEvents []*entity.ChurnRiskEvent, sub *entity.SubscriptionSnapshot) error
	GetSnapshot(ctx context.Context, userId uuid.UUID) (*dto.RiskSnapshotResponse, error)
}

type riskService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewRiskService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IRiskService {
	return &riskService{
		uowFactory: uowFactory,
		logger:     log,
		now:        time.Now,
	}
}

func (s *riskService) AppendAndRecompute(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, newEvents []*entity.ChurnRiskEvent, sub *entity.SubscriptionSnapshot) error {
	riskRepo := uow.RiskRepository()
	now := s.now()

	for _, event := range newEvents {
		if event.Id == uuid.Nil {
			event.Id = uuid.New()
		}
		event.UserId = userId
		if event.OccurredAt.IsZero() {
			event.OccurredAt = now
		}
		if err := riskRepo.AppendEvent(ctx, event); err != nil {
			return err
		}
	}

	conditions := riskConditions{}
	if sub != nil {
		conditions.Status = sub.Status
		conditions.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		conditions.TrialEnd = sub.TrialEnd
		conditions.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}

	failures, err := riskRepo.CountEventsSince(ctx, userId, entity.RiskEventPaymentFailed, now.Add(-paymentFailureWindow))
	if err != nil {
		return err
	}
	conditions.PaymentFailures7d = failures

	score, reasons := computeRiskScore(conditions, now)

	snapshot := &entity.ChurnRiskSnapshot{
		UserId:     userId,
		Score:      score,
		TopReasons: reasons,
	}
	if err := riskRepo.UpsertSnapshot(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info("Risk", "Risk snapshot recomputed", map[string]interface{}{
		"user_id": userId,
		"score":   score,
		"reasons": len(reasons),
	})
	return nil
}

func (s *riskService) GetSnapshot(ctx context.Context, userId uuid.UUID) (*dto.RiskSnapshotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	snapshot, err := uow.RiskRepository().FindSnapshot(ctx, userId)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, serverutils.NewNotFoundError("no risk snapshot for user")
	}

	return &dto.RiskSnapshotResponse{
		UserId:     snapshot.UserId,
		Score:      snapshot.Score,
		TopReasons: snapshot.TopReasons,
		UpdatedAt:  snapshot.UpdatedAt,
	}, nil
}
