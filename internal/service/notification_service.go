package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/mailer"
	"churnguard-be/internal/repository/specification"
	"churnguard-be/internal/repository/unitofwork"
	"churnguard-be/internal/websocket"
	"churnguard-be/pkg/events"
	pkgNats "churnguard-be/pkg/nats"

	"github.com/google/uuid"
)

// FeedDelivery defines how live updates reach a connected dashboard.
// Implemented by the WebSocket Hub.
type FeedDelivery interface {
	Send(userID uuid.UUID, message websocket.FeedMessage)
}

// NotificationService consumes save and payment-failure events off the
// bus and fans them out to email and the live feed. It runs after the
// publishing transaction committed; a failure here never reaches the
// request that caused the event.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pkgNats.Subscriber
	email      mailer.IEmailService
	delivery   FeedDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pkgNats.Subscriber, email mailer.IEmailService, delivery FeedDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		email:      email,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	switch typeCode {
	case events.TypeCustomerSaved:
		return s.handleCustomerSaved(ctx, event.Payload())
	case events.TypePaymentsFailing:
		return s.handlePaymentsFailing(ctx, event.Payload())
	}

	// Unknown types are acked, not retried.
	return nil
}

func (s *NotificationService) handleCustomerSaved(ctx context.Context, payload map[string]interface{}) error {
	ownerUserId, ok := parseUserId(payload["owner_user_id"])
	if !ok {
		s.logger.Warn("NotificationService", "Saved event without owner, dropping", map[string]interface{}{"payload_keys": len(payload)})
		return nil
	}

	customerRef, _ := payload["customer_ref"].(string)
	currency, _ := payload["currency"].(string)
	fee, _ := payload["fee_per_month"].(float64)

	if email, ok := s.lookupOwnerEmail(ctx, ownerUserId); ok {
		if err := s.email.SendCustomerSaved(email, customerRef, fee, currency); err != nil {
			s.logger.Error("NotificationService", "Saved email failed", map[string]interface{}{
				"owner_user_id": ownerUserId,
				"error":         err.Error(),
			})
		}
	}

	s.delivery.Send(ownerUserId, websocket.FeedMessage{
		Kind:       "customer_saved",
		Data:       payload,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *NotificationService) handlePaymentsFailing(ctx context.Context, payload map[string]interface{}) error {
	ownerUserId, ok := parseUserId(payload["owner_user_id"])
	if !ok {
		s.logger.Warn("NotificationService", "Payment-failing event without owner, dropping", nil)
		return nil
	}

	customerRef, _ := payload["customer_ref"].(string)
	invoiceRef, _ := payload["invoice_ref"].(string)
	currency, _ := payload["currency"].(string)
	amount := int64(0)
	if v, ok := payload["amount_at_risk"].(float64); ok {
		amount = int64(v)
	}

	if email, ok := s.lookupOwnerEmail(ctx, ownerUserId); ok {
		if err := s.email.SendPaymentsFailing(email, customerRef, invoiceRef, amount, currency); err != nil {
			s.logger.Error("NotificationService", "Payment-failing email failed", map[string]interface{}{
				"owner_user_id": ownerUserId,
				"error":         err.Error(),
			})
		}
	}

	s.delivery.Send(ownerUserId, websocket.FeedMessage{
		Kind:       "case_opened",
		Data:       payload,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *NotificationService) lookupOwnerEmail(ctx context.Context, userId uuid.UUID) (string, bool) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		s.logger.Warn("NotificationService", "Owner lookup failed", map[string]interface{}{"user_id": userId})
		return "", false
	}
	return user.Email, true
}

func parseUserId(raw interface{}) (uuid.UUID, bool) {
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
