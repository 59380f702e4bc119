package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(payload []byte) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func webhookFixture(processed *fakeProcessedEventRepo) (*fakeUnitOfWork, IWebhookService) {
	uow := &fakeUnitOfWork{
		users:     &fakeUserRepo{user: &entity.User{Id: uuid.New(), Email: "owner@example.com"}},
		snapshots: &fakeSnapshotRepo{},
		processed: processed,
	}
	svc := NewWebhookService(&fakeFactory{uow: uow}, nil, nil, nil, nopLogger{}, testWebhookSecret)
	return uow, svc
}

func customerCreatedPayload(eventId string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":"2022-11-15","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer","email":"owner@example.com"}}}`,
		eventId))
}

func TestHandleEventRecordsMarkerAndCommits(t *testing.T) {
	processed := &fakeProcessedEventRepo{}
	uow, svc := webhookFixture(processed)

	payload := customerCreatedPayload("evt_first")
	status, err := svc.HandleEvent(context.Background(), payload, signPayload(payload))
	assert.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusProcessed, status)
	assert.Equal(t, []string{"evt_first"}, processed.created)
	assert.Equal(t, 1, uow.committed)
	assert.Equal(t, 1, uow.snapshots.customerUpserts)
}

func TestHandleEventReplayShortCircuits(t *testing.T) {
	processed := &fakeProcessedEventRepo{exists: true}
	uow, svc := webhookFixture(processed)

	payload := customerCreatedPayload("evt_replay")
	status, err := svc.HandleEvent(context.Background(), payload, signPayload(payload))
	assert.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusAlreadyProcessed, status)
	assert.Equal(t, 0, uow.begun)
	assert.Empty(t, processed.created)
}

func TestHandleEventConcurrentDuplicateIsSuccess(t *testing.T) {
	// Both deliveries pass the existence check; the loser of the insert
	// race must still be acknowledged, not turned into a server error.
	processed := &fakeProcessedEventRepo{createErr: contract.ErrDuplicateEvent}
	uow, svc := webhookFixture(processed)

	payload := customerCreatedPayload("evt_race")
	status, err := svc.HandleEvent(context.Background(), payload, signPayload(payload))
	assert.NoError(t, err)
	assert.Equal(t, dto.WebhookStatusAlreadyProcessed, status)
	assert.Equal(t, 0, uow.committed, "the losing delivery must roll its side effects back")
	assert.GreaterOrEqual(t, uow.rolledBack, 1)
}
