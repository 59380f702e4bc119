package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func acceptFixture() (*fakeUnitOfWork, *fakeApplier, ISessionService, *entity.CancelSession) {
	profile := &entity.BusinessProfile{
		Id:               uuid.New(),
		OwnerUserId:      uuid.New(),
		Currency:         "usd",
		DefaultOfferType: entity.OfferTypeDiscount,
		DiscountPct:      25,
		DiscountMonths:   3,
		ServiceFeeRate:   0.20,
		PerSaveFeeCap:    500,
		MonthlyFeeCap:    500,
		IsActive:         true,
	}
	session := &entity.CancelSession{
		Id:              uuid.New(),
		ProfileId:       profile.Id,
		CustomerRef:     "cus_live",
		SubscriptionRef: "sub_live",
		SessionToken:    "tok_accept",
		Status:          entity.SessionStatusSurveyCompleted,
		ExitReason:      "too_expensive",
		StartedAt:       time.Now(),
	}

	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{session: session},
		profiles: &fakeProfileRepo{profile: profile},
		saves:    &fakeSaveRepo{},
	}
	applier := &fakeApplier{}
	calc := NewFeeCalculator(defaultFeePolicy(), nopLogger{})
	svc := NewSessionService(&fakeFactory{uow: uow}, applier, calc, nil, nopLogger{}, "http://widget.local")
	return uow, applier, svc, session
}

func TestAcceptOfferCommitsClaimAndRecordTogether(t *testing.T) {
	uow, applier, svc, session := acceptFixture()

	accepted := true
	resp, err := svc.DecideOffer(context.Background(), session.SessionToken, &dto.OfferDecisionRequest{Accepted: &accepted})
	assert.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, string(entity.SessionStatusSaved), resp.Status)

	assert.Equal(t, 1, applier.discountCalls)
	assert.Equal(t, 1, uow.committed)
	assert.Equal(t, entity.SessionStatusSaved, uow.sessions.session.Status)
	if assert.NotNil(t, uow.saves.record, "save record must exist whenever the session is saved") {
		assert.Equal(t, session.Id, uow.saves.record.CancelSessionId)
		assert.Equal(t, entity.OfferTypeDiscount, uow.saves.record.SaveType)
		assert.NotNil(t, uow.saves.record.PaymentActionId)
		assert.InDelta(t, 5.0, uow.saves.record.FeePerMonth, 0.001)
	}
}

func TestAcceptOfferRollsBackClaimWhenRecordWriteFails(t *testing.T) {
	uow, applier, svc, session := acceptFixture()
	uow.saves.upsertErr = errors.New("insert failed")

	accepted := true
	_, err := svc.DecideOffer(context.Background(), session.SessionToken, &dto.OfferDecisionRequest{Accepted: &accepted})
	assert.Error(t, err)

	// The claim must not outlive the failed record write, or the
	// session would be terminally saved with nothing billed.
	assert.Equal(t, 1, applier.discountCalls)
	assert.Equal(t, 0, uow.committed)
	assert.GreaterOrEqual(t, uow.rolledBack, 1)
	assert.Equal(t, entity.SessionStatusSurveyCompleted, uow.sessions.session.Status)
	assert.Nil(t, uow.saves.record)
}

func TestAcceptOfferReplaySkipsProcessor(t *testing.T) {
	uow, applier, svc, session := acceptFixture()
	uow.sessions.session.Status = entity.SessionStatusSaved

	accepted := true
	resp, err := svc.DecideOffer(context.Background(), session.SessionToken, &dto.OfferDecisionRequest{Accepted: &accepted})
	assert.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, string(entity.SessionStatusSaved), resp.Status)
	assert.Equal(t, 0, applier.discountCalls, "replayed accepts must not reach the processor")
}

func TestAcceptOfferRecordsDegradedSaveOnProcessorFailure(t *testing.T) {
	uow, applier, svc, session := acceptFixture()
	applier.err = errors.New("processor unavailable")

	accepted := true
	resp, err := svc.DecideOffer(context.Background(), session.SessionToken, &dto.OfferDecisionRequest{Accepted: &accepted})
	assert.NoError(t, err)
	assert.True(t, resp.Accepted)

	assert.Equal(t, 1, uow.committed)
	assert.Equal(t, entity.SessionStatusSaved, uow.sessions.session.Status)
	if assert.NotNil(t, uow.saves.record) {
		assert.Nil(t, uow.saves.record.PaymentActionId)
	}
}
