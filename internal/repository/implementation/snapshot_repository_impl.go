package implementation

import (
	"context"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type snapshotRepositoryImpl struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) contract.SnapshotRepository {
	return &snapshotRepositoryImpl{db: db}
}

func (r *snapshotRepositoryImpl) UpsertCustomer(ctx context.Context, snap *entity.CustomerSnapshot) error {
	m := &model.CustomerSnapshot{
		Id:          snap.Id,
		UserId:      snap.UserId,
		CustomerRef: snap.CustomerRef,
		Email:       snap.Email,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "email", "updated_at"}),
	}).Create(m).Error
}

func (r *snapshotRepositoryImpl) UpsertSubscription(ctx context.Context, snap *entity.SubscriptionSnapshot) error {
	m := &model.SubscriptionSnapshot{
		Id:                snap.Id,
		UserId:            snap.UserId,
		SubscriptionRef:   snap.SubscriptionRef,
		CustomerRef:       snap.CustomerRef,
		Status:            snap.Status,
		CancelAtPeriodEnd: snap.CancelAtPeriodEnd,
		TrialEnd:          snap.TrialEnd,
		CurrentPeriodEnd:  snap.CurrentPeriodEnd,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subscription_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "customer_ref", "status", "cancel_at_period_end",
			"trial_end", "current_period_end", "updated_at",
		}),
	}).Create(m).Error
}

func (r *snapshotRepositoryImpl) UpsertInvoice(ctx context.Context, snap *entity.InvoiceSnapshot) error {
	m := &model.InvoiceSnapshot{
		Id:              snap.Id,
		UserId:          snap.UserId,
		InvoiceRef:      snap.InvoiceRef,
		SubscriptionRef: snap.SubscriptionRef,
		CustomerRef:     snap.CustomerRef,
		AmountDue:       snap.AmountDue,
		Currency:        snap.Currency,
		Status:          snap.Status,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "invoice_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "subscription_ref", "customer_ref", "amount_due",
			"currency", "status", "updated_at",
		}),
	}).Create(m).Error
}

func (r *snapshotRepositoryImpl) FindCustomerByRef(ctx context.Context, customerRef string) (*entity.CustomerSnapshot, error) {
	var m model.CustomerSnapshot
	if err := r.db.WithContext(ctx).Where("customer_ref = ?", customerRef).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entity.CustomerSnapshot{
		Id:          m.Id,
		UserId:      m.UserId,
		CustomerRef: m.CustomerRef,
		Email:       m.Email,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func (r *snapshotRepositoryImpl) FindSubscriptionByRef(ctx context.Context, subscriptionRef string) (*entity.SubscriptionSnapshot, error) {
	var m model.SubscriptionSnapshot
	if err := r.db.WithContext(ctx).Where("subscription_ref = ?", subscriptionRef).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entity.SubscriptionSnapshot{
		Id:                m.Id,
		UserId:            m.UserId,
		SubscriptionRef:   m.SubscriptionRef,
		CustomerRef:       m.CustomerRef,
		Status:            m.Status,
		CancelAtPeriodEnd: m.CancelAtPeriodEnd,
		TrialEnd:          m.TrialEnd,
		CurrentPeriodEnd:  m.CurrentPeriodEnd,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func (r *snapshotRepositoryImpl) FindInvoiceByRef(ctx context.Context, invoiceRef string) (*entity.InvoiceSnapshot, error) {
	var m model.InvoiceSnapshot
	if err := r.db.WithContext(ctx).Where("invoice_ref = ?", invoiceRef).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entity.InvoiceSnapshot{
		Id:              m.Id,
		UserId:          m.UserId,
		InvoiceRef:      m.InvoiceRef,
		SubscriptionRef: m.SubscriptionRef,
		CustomerRef:     m.CustomerRef,
		AmountDue:       m.AmountDue,
		Currency:        m.Currency,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}
