package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/unitofwork"
	"churnguard-be/pkg/events"
	pkgNats "churnguard-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// IWebhookService ingests processor events: verify, dedupe, synchronize
// canonical records, classify risk, and drive recovery cases. Everything
// for one event commits in a single transaction together with the
// idempotency marker.
type IWebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signatureHeader string) (string, error)
}

type webhookService struct {
	uowFactory      unitofwork.RepositoryFactory
	riskService     IRiskService
	recoveryService IRecoveryService
	eventPublisher  *pkgNats.Publisher
	logger          logger.ILogger
	webhookSecret   string
	now             func() time.Time
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	riskService IRiskService,
	recoveryService IRecoveryService,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
	webhookSecret string,
) IWebhookService {
	return &webhookService{
		uowFactory:      uowFactory,
		riskService:     riskService,
		recoveryService: recoveryService,
		eventPublisher:  eventPublisher,
		logger:          log,
		webhookSecret:   webhookSecret,
		now:             time.Now,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) (string, error) {
	if s.webhookSecret == "" {
		return "", serverutils.NewConfigurationError("webhook secret is not configured")
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		s.logger.Warn("Webhook", "Signature verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", serverutils.NewValidationError("invalid webhook signature")
	}

	if !isSupportedEventType(string(event.Type)) {
		return dto.WebhookStatusIgnored, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	processed, err := uow.ProcessedEventRepository().Exists(ctx, event.ID)
	if err != nil {
		return "", err
	}
	if processed {
		s.logger.Info("Webhook", "Duplicate event skipped", map[string]interface{}{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		return dto.WebhookStatusAlreadyProcessed, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer uow.Rollback()

	outcome, err := s.dispatch(ctx, uow, &event)
	if err != nil {
		return "", err
	}
	if outcome.status == dto.WebhookStatusIgnored {
		// Owner could not be resolved yet; leave the event unrecorded so
		// a redelivery after onboarding can still land.
		return dto.WebhookStatusIgnored, nil
	}

	if err := uow.ProcessedEventRepository().Create(ctx, &entity.ProcessedEvent{
		EventId:   event.ID,
		EventType: string(event.Type),
	}); err != nil {
		if errors.Is(err, contract.ErrDuplicateEvent) {
			// A concurrent delivery committed first; this one rolls back
			// and the event stays exactly-once.
			s.logger.Info("Webhook", "Concurrent duplicate event skipped", map[string]interface{}{
				"event_id":   event.ID,
				"event_type": string(event.Type),
			})
			return dto.WebhookStatusAlreadyProcessed, nil
		}
		return "", err
	}

	if err := uow.Commit(); err != nil {
		return "", err
	}

	s.publishNotifications(ctx, outcome)

	return dto.WebhookStatusProcessed, nil
}

// handleOutcome collects the notifications to publish after commit.
type handleOutcome struct {
	status      string
	openedCase  *entity.RecoveryCase
	ownerUserId uuid.UUID
}

func isSupportedEventType(eventType string) bool {
	switch eventType {
	case "invoice.payment_failed",
		"invoice.payment_succeeded",
		"invoice.paid",
		"invoice.upcoming",
		"customer.created",
		"customer.updated",
		"customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"customer.subscription.trial_will_end":
		return true
	}
	return false
}

func (s *webhookService) dispatch(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	switch string(event.Type) {
	case "invoice.payment_failed":
		return s.handleInvoiceFailed(ctx, uow, event)
	case "invoice.payment_succeeded", "invoice.paid":
		return s.handleInvoiceSucceeded(ctx, uow, event)
	case "invoice.upcoming":
		return s.handleInvoiceUpcoming(ctx, uow, event)
	case "customer.created", "customer.updated":
		return s.handleCustomer(ctx, uow, event)
	case "customer.subscription.trial_will_end":
		return s.handleTrialWillEnd(ctx, uow, event)
	default: // subscription created/updated/deleted
		return s.handleSubscription(ctx, uow, event)
	}
}

func (s *webhookService) handleCustomer(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var customer stripe.Customer
	if err := json.Unmarshal(event.Data.Raw, &customer); err != nil {
		return nil, serverutils.NewValidationError("malformed customer payload")
	}

	userId, ok, err := s.resolveOwnerByEmail(ctx, uow, customer.Email)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, customer.Email)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	snap := &entity.CustomerSnapshot{
		Id:          uuid.New(),
		UserId:      userId,
		CustomerRef: customer.ID,
		Email:       customer.Email,
	}
	if err := uow.SnapshotRepository().UpsertCustomer(ctx, snap); err != nil {
		return nil, err
	}

	return &handleOutcome{status: dto.WebhookStatusProcessed}, nil
}

func (s *webhookService) handleSubscription(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, serverutils.NewValidationError("malformed subscription payload")
	}
	customerRef := ""
	if sub.Customer != nil {
		customerRef = sub.Customer.ID
	}

	userId, ok, err := s.resolveOwnerByCustomerRef(ctx, uow, customerRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, customerRef)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	status := string(sub.Status)
	if string(event.Type) == "customer.subscription.deleted" {
		status = "canceled"
	}

	snap := &entity.SubscriptionSnapshot{
		Id:                uuid.New(),
		UserId:            userId,
		SubscriptionRef:   sub.ID,
		CustomerRef:       customerRef,
		Status:            status,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		TrialEnd:          unixToTime(sub.TrialEnd),
		CurrentPeriodEnd:  unixToTime(sub.CurrentPeriodEnd),
	}
	if err := uow.SnapshotRepository().UpsertSubscription(ctx, snap); err != nil {
		return nil, err
	}

	riskEvents := s.classifySubscription(snap, string(event.Type))
	if err := s.riskService.AppendAndRecompute(ctx, uow, userId, riskEvents, snap); err != nil {
		return nil, err
	}

	return &handleOutcome{status: dto.WebhookStatusProcessed}, nil
}

// classifySubscription emits the signal rows a subscription state change
// justifies. The score itself is recomputed from the full picture, so
// these exist for the audit trail.
func (s *webhookService) classifySubscription(snap *entity.SubscriptionSnapshot, eventType string) []*entity.ChurnRiskEvent {
	now := s.now()
	var riskEvents []*entity.ChurnRiskEvent

	if eventType == "customer.subscription.deleted" {
		return []*entity.ChurnRiskEvent{{
			EventType: entity.RiskEventSubscriptionEnded,
			Severity:  100,
		}}
	}

	switch snap.Status {
	case "past_due":
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventPastDue,
			Severity:  40,
		})
	case "unpaid":
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventUnpaid,
			Severity:  40,
		})
	}

	if snap.CancelAtPeriodEnd {
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventCancelScheduled,
			Severity:  35,
		})
	}

	if snap.TrialEnd != nil && snap.TrialEnd.After(now) && snap.TrialEnd.Sub(now) <= trialEndingWindow {
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventTrialEndingSoon,
			Severity:  25,
			Metadata:  entity.RiskEventMetadata{Trial: &entity.TrialMeta{TrialEnd: *snap.TrialEnd}},
		})
	}

	if (snap.Status == "active" || snap.Status == "trialing") &&
		snap.CurrentPeriodEnd != nil && snap.CurrentPeriodEnd.After(now) &&
		snap.CurrentPeriodEnd.Sub(now) <= renewalDueWindow {
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventRenewalDue,
			Severity:  15,
			Metadata:  entity.RiskEventMetadata{Renewal: &entity.RenewalMeta{PeriodEnd: *snap.CurrentPeriodEnd}},
		})
	}

	return riskEvents
}

func (s *webhookService) handleTrialWillEnd(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, serverutils.NewValidationError("malformed subscription payload")
	}
	customerRef := ""
	if sub.Customer != nil {
		customerRef = sub.Customer.ID
	}

	userId, ok, err := s.resolveOwnerByCustomerRef(ctx, uow, customerRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, customerRef)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	snap, err := uow.SnapshotRepository().FindSubscriptionByRef(ctx, sub.ID)
	if err != nil {
		return nil, err
	}

	var riskEvents []*entity.ChurnRiskEvent
	if trialEnd := unixToTime(sub.TrialEnd); trialEnd != nil {
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventTrialEndingSoon,
			Severity:  25,
			Metadata:  entity.RiskEventMetadata{Trial: &entity.TrialMeta{TrialEnd: *trialEnd}},
		})
	}

	if err := s.riskService.AppendAndRecompute(ctx, uow, userId, riskEvents, snap); err != nil {
		return nil, err
	}
	return &handleOutcome{status: dto.WebhookStatusProcessed}, nil
}

func (s *webhookService) handleInvoiceFailed(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, serverutils.NewValidationError("malformed invoice payload")
	}
	if invoice.Subscription == nil {
		// Only subscription-linked invoices open cases.
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	userId, ok, err := s.resolveInvoiceOwner(ctx, uow, &invoice)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, invoice.CustomerEmail)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	snap := invoiceSnapshotFrom(&invoice, userId)
	if err := uow.SnapshotRepository().UpsertInvoice(ctx, snap); err != nil {
		return nil, err
	}

	declineCode, retryScheduled := extractFailureDetails(&invoice)

	riskEvents := []*entity.ChurnRiskEvent{{
		EventType: entity.RiskEventPaymentFailed,
		Severity:  50,
		Metadata: entity.RiskEventMetadata{
			PaymentFailure: &entity.PaymentFailureMeta{
				InvoiceRef:  invoice.ID,
				DeclineCode: declineCode,
				AmountDue:   invoice.AmountDue,
				Currency:    string(invoice.Currency),
			},
		},
	}}

	sub, err := uow.SnapshotRepository().FindSubscriptionByRef(ctx, invoice.Subscription.ID)
	if err != nil {
		return nil, err
	}
	if err := s.riskService.AppendAndRecompute(ctx, uow, userId, riskEvents, sub); err != nil {
		return nil, err
	}

	openedCase, created, err := s.recoveryService.OpenCaseForFailedInvoice(ctx, uow, snap, userId, declineCode, retryScheduled)
	if err != nil {
		return nil, err
	}

	outcome := &handleOutcome{status: dto.WebhookStatusProcessed, ownerUserId: userId}
	if created {
		outcome.openedCase = openedCase
	}
	return outcome, nil
}

func (s *webhookService) handleInvoiceSucceeded(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, serverutils.NewValidationError("malformed invoice payload")
	}

	userId, ok, err := s.resolveInvoiceOwner(ctx, uow, &invoice)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, invoice.CustomerEmail)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	if err := uow.SnapshotRepository().UpsertInvoice(ctx, invoiceSnapshotFrom(&invoice, userId)); err != nil {
		return nil, err
	}

	if _, err := s.recoveryService.ResolveCaseForInvoice(ctx, uow, invoice.ID); err != nil {
		return nil, err
	}

	return &handleOutcome{status: dto.WebhookStatusProcessed}, nil
}

// handleInvoiceUpcoming records the renewal-approaching signal and
// recomputes the score. No invoice exists yet, so nothing is upserted.
func (s *webhookService) handleInvoiceUpcoming(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) (*handleOutcome, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, serverutils.NewValidationError("malformed invoice payload")
	}
	if invoice.Subscription == nil {
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	userId, ok, err := s.resolveInvoiceOwner(ctx, uow, &invoice)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logUnresolved(event, invoice.CustomerEmail)
		return &handleOutcome{status: dto.WebhookStatusIgnored}, nil
	}

	sub, err := uow.SnapshotRepository().FindSubscriptionByRef(ctx, invoice.Subscription.ID)
	if err != nil {
		return nil, err
	}

	var riskEvents []*entity.ChurnRiskEvent
	if sub != nil && sub.CurrentPeriodEnd != nil {
		riskEvents = append(riskEvents, &entity.ChurnRiskEvent{
			EventType: entity.RiskEventRenewalDue,
			Severity:  15,
			Metadata:  entity.RiskEventMetadata{Renewal: &entity.RenewalMeta{PeriodEnd: *sub.CurrentPeriodEnd}},
		})
	}

	if err := s.riskService.AppendAndRecompute(ctx, uow, userId, riskEvents, sub); err != nil {
		return nil, err
	}
	return &handleOutcome{status: dto.WebhookStatusProcessed}, nil
}

// resolveOwnerByEmail is the identity bridge: the processor's customer
// email must match a local account.
func (s *webhookService) resolveOwnerByEmail(ctx context.Context, uow unitofwork.UnitOfWork, email string) (uuid.UUID, bool, error) {
	if email == "" {
		return uuid.Nil, false, nil
	}
	user, err := uow.UserRepository().FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, false, err
	}
	if user == nil {
		return uuid.Nil, false, nil
	}
	return user.Id, true, nil
}

// resolveOwnerByCustomerRef prefers an already-synchronized customer
// snapshot over the email bridge.
func (s *webhookService) resolveOwnerByCustomerRef(ctx context.Context, uow unitofwork.UnitOfWork, customerRef string) (uuid.UUID, bool, error) {
	if customerRef == "" {
		return uuid.Nil, false, nil
	}
	snap, err := uow.SnapshotRepository().FindCustomerByRef(ctx, customerRef)
	if err != nil {
		return uuid.Nil, false, err
	}
	if snap == nil {
		return uuid.Nil, false, nil
	}
	return snap.UserId, true, nil
}

func (s *webhookService) resolveInvoiceOwner(ctx context.Context, uow unitofwork.UnitOfWork, invoice *stripe.Invoice) (uuid.UUID, bool, error) {
	customerRef := ""
	if invoice.Customer != nil {
		customerRef = invoice.Customer.ID
	}
	if userId, ok, err := s.resolveOwnerByCustomerRef(ctx, uow, customerRef); err != nil || ok {
		return userId, ok, err
	}
	return s.resolveOwnerByEmail(ctx, uow, invoice.CustomerEmail)
}

func (s *webhookService) logUnresolved(event *stripe.Event, hint string) {
	s.logger.Info("Webhook", "No local owner for processor customer, skipping", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
		"hint":       hint,
	})
}

// publishNotifications runs after commit and never fails the request.
func (s *webhookService) publishNotifications(ctx context.Context, outcome *handleOutcome) {
	if s.eventPublisher == nil || outcome.openedCase == nil {
		return
	}

	evt := events.BaseEvent{
		Type: events.TypePaymentsFailing,
		Data: map[string]interface{}{
			"owner_user_id":  outcome.ownerUserId.String(),
			"case_id":        outcome.openedCase.Id.String(),
			"customer_ref":   outcome.openedCase.CustomerRef,
			"invoice_ref":    outcome.openedCase.InvoiceRef,
			"amount_at_risk": outcome.openedCase.AmountAtRisk,
			"currency":       outcome.openedCase.Currency,
			"deadline_at":    outcome.openedCase.DeadlineAt,
		},
		OccurredAt: s.now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Error("Webhook", "Failed to publish payment-failing event", map[string]interface{}{
			"case_id": outcome.openedCase.Id,
			"error":   err.Error(),
		})
	}
}

func invoiceSnapshotFrom(invoice *stripe.Invoice, userId uuid.UUID) *entity.InvoiceSnapshot {
	customerRef := ""
	if invoice.Customer != nil {
		customerRef = invoice.Customer.ID
	}
	subscriptionRef := ""
	if invoice.Subscription != nil {
		subscriptionRef = invoice.Subscription.ID
	}
	return &entity.InvoiceSnapshot{
		Id:              uuid.New(),
		UserId:          userId,
		InvoiceRef:      invoice.ID,
		SubscriptionRef: subscriptionRef,
		CustomerRef:     customerRef,
		AmountDue:       invoice.AmountDue,
		Currency:        string(invoice.Currency),
		Status:          string(invoice.Status),
	}
}

// extractFailureDetails pulls the decline code off the attempted charge
// and whether the processor has another retry scheduled.
func extractFailureDetails(invoice *stripe.Invoice) (string, bool) {
	declineCode := ""
	if invoice.Charge != nil {
		if invoice.Charge.FailureCode != "" {
			declineCode = invoice.Charge.FailureCode
		}
		if invoice.Charge.Outcome != nil && invoice.Charge.Outcome.Reason != "" {
			declineCode = invoice.Charge.Outcome.Reason
		}
	}
	retryScheduled := invoice.NextPaymentAttempt > 0
	return declineCode, retryScheduled
}

func unixToTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
