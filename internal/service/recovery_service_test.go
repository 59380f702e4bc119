package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"churnguard-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveCaseForInvoiceAppendsAuditAction(t *testing.T) {
	repo := &fakeRecoveryRepo{
		caseByInvoice: &entity.RecoveryCase{
			Id:         uuid.New(),
			InvoiceRef: "in_123",
			Status:     entity.RecoveryCaseOpen,
		},
		resolveRows: 1,
	}
	uow := &fakeUnitOfWork{recovery: repo}
	svc := NewRecoveryService(&fakeFactory{uow: uow}, nopLogger{}, 48*time.Hour)

	resolved, err := svc.ResolveCaseForInvoice(context.Background(), uow, "in_123")
	assert.NoError(t, err)
	assert.True(t, resolved)
	if assert.Len(t, repo.actions, 1) {
		assert.Equal(t, entity.RecoveryActionMarkRecovered, repo.actions[0].ActionType)
		assert.Equal(t, repo.caseByInvoice.Id, repo.actions[0].RecoveryCaseId)
	}
}

func TestResolveCaseForInvoicePropagatesLookupFailure(t *testing.T) {
	lookupErr := errors.New("connection reset")
	repo := &fakeRecoveryRepo{
		resolveRows: 1,
		findErr:     lookupErr,
	}
	uow := &fakeUnitOfWork{recovery: repo}
	svc := NewRecoveryService(&fakeFactory{uow: uow}, nopLogger{}, 48*time.Hour)

	resolved, err := svc.ResolveCaseForInvoice(context.Background(), uow, "in_123")
	assert.ErrorIs(t, err, lookupErr)
	assert.False(t, resolved)
	assert.Empty(t, repo.actions, "the audit action must not be skipped silently")
}

func TestResolveCaseForInvoiceNoopWhenAlreadyTerminal(t *testing.T) {
	repo := &fakeRecoveryRepo{resolveRows: 0}
	uow := &fakeUnitOfWork{recovery: repo}
	svc := NewRecoveryService(&fakeFactory{uow: uow}, nopLogger{}, 48*time.Hour)

	resolved, err := svc.ResolveCaseForInvoice(context.Background(), uow, "in_123")
	assert.NoError(t, err)
	assert.False(t, resolved)
	assert.Empty(t, repo.actions)
}
