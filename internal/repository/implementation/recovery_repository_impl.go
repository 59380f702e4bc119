package implementation

import (
	"context"
	"errors"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recoveryRepositoryImpl struct {
	db *gorm.DB
}

func NewRecoveryRepository(db *gorm.DB) contract.RecoveryRepository {
	return &recoveryRepositoryImpl{db: db}
}

func (r *recoveryRepositoryImpl) CreateCase(ctx context.Context, c *entity.RecoveryCase) error {
	m := r.mapToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contract.ErrDuplicateCase
		}
		return err
	}
	return nil
}

func (r *recoveryRepositoryImpl) FindCase(ctx context.Context, specs ...specification.Specification) (*entity.RecoveryCase, error) {
	var m model.RecoveryCase
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m), nil
}

func (r *recoveryRepositoryImpl) FindCaseByInvoiceRef(ctx context.Context, invoiceRef string) (*entity.RecoveryCase, error) {
	var m model.RecoveryCase
	if err := r.db.WithContext(ctx).Where("invoice_ref = ?", invoiceRef).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapToEntity(&m), nil
}

func (r *recoveryRepositoryImpl) ResolveCase(ctx context.Context, invoiceRef string, resolvedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RecoveryCase{}).
		Where("invoice_ref = ? AND status = ?", invoiceRef, string(entity.RecoveryCaseOpen)).
		Updates(map[string]interface{}{
			"status":      string(entity.RecoveryCaseRecovered),
			"resolved_at": resolvedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *recoveryRepositoryImpl) ExpireCase(ctx context.Context, caseId uuid.UUID, resolvedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RecoveryCase{}).
		Where("id = ? AND status = ?", caseId, string(entity.RecoveryCaseOpen)).
		Updates(map[string]interface{}{
			"status":      string(entity.RecoveryCaseExpired),
			"resolved_at": resolvedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *recoveryRepositoryImpl) AppendAction(ctx context.Context, action *entity.RecoveryAction) error {
	m := &model.RecoveryAction{
		Id:             action.Id,
		RecoveryCaseId: action.RecoveryCaseId,
		ActionType:     string(action.ActionType),
		Note:           action.Note,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *recoveryRepositoryImpl) MarkFirstAction(ctx context.Context, caseId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.RecoveryCase{}).
		Where("id = ? AND first_action_at IS NULL", caseId).
		Update("first_action_at", at).Error
}

func (r *recoveryRepositoryImpl) mapToModel(c *entity.RecoveryCase) *model.RecoveryCase {
	return &model.RecoveryCase{
		Id:            c.Id,
		OwnerUserId:   c.OwnerUserId,
		CustomerRef:   c.CustomerRef,
		InvoiceRef:    c.InvoiceRef,
		AmountAtRisk:  c.AmountAtRisk,
		Currency:      c.Currency,
		Status:        string(c.Status),
		ChurnReason:   string(c.ChurnReason),
		OpenedAt:      c.OpenedAt,
		DeadlineAt:    c.DeadlineAt,
		FirstActionAt: c.FirstActionAt,
		ResolvedAt:    c.ResolvedAt,
	}
}

func (r *recoveryRepositoryImpl) mapToEntity(m *model.RecoveryCase) *entity.RecoveryCase {
	return &entity.RecoveryCase{
		Id:            m.Id,
		OwnerUserId:   m.OwnerUserId,
		CustomerRef:   m.CustomerRef,
		InvoiceRef:    m.InvoiceRef,
		AmountAtRisk:  m.AmountAtRisk,
		Currency:      m.Currency,
		Status:        entity.RecoveryCaseStatus(m.Status),
		ChurnReason:   entity.ChurnReason(m.ChurnReason),
		OpenedAt:      m.OpenedAt,
		DeadlineAt:    m.DeadlineAt,
		FirstActionAt: m.FirstActionAt,
		ResolvedAt:    m.ResolvedAt,
	}
}
