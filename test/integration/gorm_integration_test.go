package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/unitofwork"
	"churnguard-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ProcessedEventRepository())
	assert.NotNil(t, uow.RecoveryRepository())
	assert.NotNil(t, uow.SessionRepository())
	assert.NotNil(t, uow.SaveRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()

	t.Run("Check Processed Event Idempotency Marker", func(t *testing.T) {
		eventId := "evt_test_" + uuid.New().String()

		exists, err := uow.ProcessedEventRepository().Exists(ctx, eventId)
		assert.NoError(t, err)
		assert.False(t, exists)

		err = uow.ProcessedEventRepository().Create(ctx, &entity.ProcessedEvent{
			EventId:     eventId,
			EventType:   "invoice.payment_failed",
			ProcessedAt: time.Now(),
		})
		assert.NoError(t, err)

		exists, err = uow.ProcessedEventRepository().Exists(ctx, eventId)
		assert.NoError(t, err)
		assert.True(t, exists, "replayed event id must be visible as processed")

		// Two concurrent deliveries both pass the existence check; the
		// loser's insert must surface as the duplicate sentinel.
		err = uow.ProcessedEventRepository().Create(ctx, &entity.ProcessedEvent{
			EventId:   eventId,
			EventType: "invoice.payment_failed",
		})
		assert.True(t, errors.Is(err, contract.ErrDuplicateEvent), "duplicate marker insert must collide, got: %v", err)
	})

	t.Run("Check One Case Per Invoice", func(t *testing.T) {
		invoiceRef := "in_test_" + uuid.New().String()
		ownerId := uuid.New()

		first := &entity.RecoveryCase{
			Id:           uuid.New(),
			OwnerUserId:  ownerId,
			CustomerRef:  "cus_test",
			InvoiceRef:   invoiceRef,
			AmountAtRisk: 4999,
			Currency:     "usd",
			Status:       entity.RecoveryCaseOpen,
			ChurnReason:  entity.ChurnReasonCardExpired,
			OpenedAt:     time.Now(),
			DeadlineAt:   time.Now().Add(48 * time.Hour),
		}
		err := uow.RecoveryRepository().CreateCase(ctx, first)
		assert.NoError(t, err)

		dup := *first
		dup.Id = uuid.New()
		err = uow.RecoveryRepository().CreateCase(ctx, &dup)
		assert.True(t, errors.Is(err, contract.ErrDuplicateCase), "second case for the same invoice must collide, got: %v", err)

		// Resolution is a conditional update; it fires once and only once.
		rows, err := uow.RecoveryRepository().ResolveCase(ctx, invoiceRef, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = uow.RecoveryRepository().ResolveCase(ctx, invoiceRef, time.Now())
		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows, "a recovered case must not resolve again")
	})

	t.Run("Check Session State Machine", func(t *testing.T) {
		session := &entity.CancelSession{
			Id:           uuid.New(),
			ProfileId:    uuid.New(),
			SessionToken: "tok_" + uuid.New().String(),
			Status:       entity.SessionStatusStarted,
			StartedAt:    time.Now(),
		}
		err := uow.SessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		rows, err := uow.SessionRepository().CompleteSurvey(ctx, session.Id, "too_expensive", "just testing", entity.OfferTypeDiscount)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		// Resubmission loses the race: the row already left "started".
		rows, err = uow.SessionRepository().CompleteSurvey(ctx, session.Id, "other", "", entity.OfferTypeNone)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows)

		accepted := true
		now := time.Now()
		rows, err = uow.SessionRepository().Transition(ctx, session.Id, entity.SessionStatusSurveyCompleted, entity.SessionStatusSaved, &accepted, &now)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = uow.SessionRepository().Transition(ctx, session.Id, entity.SessionStatusSurveyCompleted, entity.SessionStatusSaved, &accepted, &now)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows, "saved session must not transition again")

		found, err := uow.SessionRepository().FindByToken(ctx, session.SessionToken)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, entity.SessionStatusSaved, found.Status)
			assert.Equal(t, "too_expensive", found.ExitReason)
		}
	})

	t.Run("Check Save Record Upsert", func(t *testing.T) {
		profileId := uuid.New()
		sessionId := uuid.New()
		pct := 25

		record := &entity.SavedCustomerRecord{
			Id:              uuid.New(),
			ProfileId:       profileId,
			CancelSessionId: sessionId,
			SaveType:        entity.OfferTypeDiscount,
			OriginalMrr:     100,
			NewMrr:          75,
			DiscountPct:     &pct,
			FeePerMonth:     5,
		}
		err := uow.SaveRepository().Upsert(ctx, record)
		assert.NoError(t, err)

		// Replay with a different fee keeps one row and the latest values.
		record.FeePerMonth = 6
		err = uow.SaveRepository().Upsert(ctx, record)
		assert.NoError(t, err)

		found, err := uow.SaveRepository().FindBySessionID(ctx, sessionId)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.InDelta(t, 6.0, found.FeePerMonth, 0.001)
		}

		total, err := uow.SaveRepository().SumFeesSince(ctx, profileId, time.Now().Add(-time.Hour))
		assert.NoError(t, err)
		assert.InDelta(t, 6.0, total, 0.001)
	})
}
