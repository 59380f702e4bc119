package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/payment"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/repository/specification"
	"churnguard-be/internal/repository/unitofwork"
	"churnguard-be/pkg/events"
	pkgNats "churnguard-be/pkg/nats"

	"github.com/google/uuid"
)

// ISessionService drives a customer through the cancel flow: create by
// the business's backend, then fetched and advanced by the public widget.
type ISessionService interface {
	CreateSession(ctx context.Context, ownerUserId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSession(ctx context.Context, token string) (*dto.GetSessionResponse, error)
	SubmitSurvey(ctx context.Context, token string, req *dto.SubmitSurveyRequest) (*dto.SubmitSurveyResponse, error)
	DecideOffer(ctx context.Context, token string, req *dto.OfferDecisionRequest) (*dto.OfferDecisionResponse, error)
	CompleteSession(ctx context.Context, token string, req *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	applier        payment.Applier
	feeCalculator  *FeeCalculator
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
	clientURL      string
	now            func() time.Time
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	applier payment.Applier,
	feeCalculator *FeeCalculator,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
	clientURL string,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		applier:        applier,
		feeCalculator:  feeCalculator,
		eventPublisher: eventPublisher,
		logger:         log,
		clientURL:      clientURL,
		now:            time.Now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, ownerUserId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.ProfileRepository().FindByOwner(ctx, ownerUserId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NewNotFoundError("business profile not found")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &entity.CancelSession{
		Id:              uuid.New(),
		ProfileId:       profile.Id,
		CustomerRef:     req.CustomerId,
		SubscriptionRef: req.SubscriptionId,
		SessionToken:    token,
		Status:          entity.SessionStatusStarted,
		StartedAt:       s.now(),
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Session", "Cancel session created", map[string]interface{}{
		"session_id": session.Id,
		"profile_id": profile.Id,
		"test_mode":  session.IsTest(),
	})

	return &dto.CreateSessionResponse{
		SessionToken: token,
		CancelUrl:    fmt.Sprintf("%s/cancel/%s", s.clientURL, token),
		SessionId:    session.Id,
	}, nil
}

func (s *sessionService) GetSession(ctx context.Context, token string) (*dto.GetSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, token)
	if err != nil {
		return nil, err
	}
	if session.Status == entity.SessionStatusSaved || session.Status == entity.SessionStatusCancelled {
		return nil, serverutils.NewConflictError("session already completed")
	}

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByID{ID: session.ProfileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NewNotFoundError("business profile not found")
	}

	return &dto.GetSessionResponse{
		Session: dto.SessionInfo{
			Id:                 session.Id,
			Status:             string(session.Status),
			ExitReason:         session.ExitReason,
			OfferTypePresented: string(session.OfferTypePresented),
			OfferAccepted:      session.OfferAccepted,
		},
		Config: dto.WidgetConfig{
			SurveyOptions: profile.SurveyOptions,
			OfferSettings: dto.OfferSettings{
				DefaultOfferType: string(profile.DefaultOfferType),
				DiscountPct:      profile.DiscountPct,
				DiscountMonths:   profile.DiscountMonths,
				PauseMonths:      profile.PauseMonths,
			},
			Branding:       profile.Branding,
			WidgetSettings: profile.WidgetSettings,
			IsActive:       profile.IsActive,
		},
	}, nil
}

func (s *sessionService) SubmitSurvey(ctx context.Context, token string, req *dto.SubmitSurveyRequest) (*dto.SubmitSurveyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, token)
	if err != nil {
		return nil, err
	}
	if !session.CanTransition(entity.SessionStatusSurveyCompleted) {
		return nil, serverutils.NewConflictError("survey already submitted")
	}

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByID{ID: session.ProfileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NewNotFoundError("business profile not found")
	}

	offer := profile.ResolveOffer(req.ExitReason)

	rows, err := uow.SessionRepository().CompleteSurvey(ctx, session.Id, req.ExitReason, req.CustomFeedback, offer.Type)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// A concurrent submit moved the session first.
		return nil, serverutils.NewConflictError("survey already submitted")
	}

	return &dto.SubmitSurveyResponse{
		Status: string(entity.SessionStatusSurveyCompleted),
		Offer:  offerToDto(offer),
	}, nil
}

func (s *sessionService) DecideOffer(ctx context.Context, token string, req *dto.OfferDecisionRequest) (*dto.OfferDecisionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, token)
	if err != nil {
		return nil, err
	}

	if req.Accepted == nil {
		return nil, serverutils.NewValidationError("accepted is required")
	}
	accepted := *req.Accepted

	if !accepted {
		return s.declineOffer(ctx, uow, session)
	}
	return s.acceptOffer(ctx, uow, session)
}

func (s *sessionService) declineOffer(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.CancelSession) (*dto.OfferDecisionResponse, error) {
	if !session.CanTransition(entity.SessionStatusCancelled) {
		return nil, serverutils.NewConflictError("session is not awaiting an offer decision")
	}

	accepted := false
	completedAt := s.now()
	rows, err := uow.SessionRepository().Transition(ctx, session.Id,
		entity.SessionStatusSurveyCompleted, entity.SessionStatusCancelled, &accepted, &completedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, serverutils.NewConflictError("session already completed")
	}

	return &dto.OfferDecisionResponse{
		Status:   string(entity.SessionStatusCancelled),
		Accepted: false,
		Message:  "Cancellation confirmed.",
	}, nil
}

// acceptOffer claims the session with a status CAS before touching the
// payment processor, so concurrent accepts apply the action at most
// once. Claim and save record commit together: a failed record write
// rolls the claim back instead of leaving a saved session with no
// record. A replayed accept on an already-saved session returns the
// recorded outcome instead of an error.
func (s *sessionService) acceptOffer(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.CancelSession) (*dto.OfferDecisionResponse, error) {
	if session.Status == entity.SessionStatusSaved {
		return s.replayedAccept()
	}
	if !session.CanTransition(entity.SessionStatusSaved) {
		return nil, serverutils.NewConflictError("session is not awaiting an offer decision")
	}

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByID{ID: session.ProfileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, serverutils.NewNotFoundError("business profile not found")
	}

	offer := profile.ResolveOffer(session.ExitReason)
	if offer.Type == entity.OfferTypeNone {
		return nil, serverutils.NewConflictError("no offer was presented on this session")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	accepted := true
	completedAt := s.now()
	rows, err := uow.SessionRepository().Transition(ctx, session.Id,
		entity.SessionStatusSurveyCompleted, entity.SessionStatusSaved, &accepted, &completedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost the claim to a concurrent call; report its outcome.
		return s.replayedAccept()
	}

	result, degraded := s.applyOffer(ctx, session, offer)

	fee := s.feeCalculator.Calculate(ctx, uow.SaveRepository(), profile, result.OriginalMrr, result.NewMrr)

	record := &entity.SavedCustomerRecord{
		Id:              uuid.New(),
		ProfileId:       profile.Id,
		CancelSessionId: session.Id,
		SaveType:        offer.Type,
		OriginalMrr:     result.OriginalMrr,
		NewMrr:          result.NewMrr,
		PaymentActionId: result.ActionId,
		FeePerMonth:     fee,
	}
	switch offer.Type {
	case entity.OfferTypeDiscount:
		pct := offer.Percentage
		record.DiscountPct = &pct
	case entity.OfferTypePause:
		months := offer.DurationMonths
		record.PauseMonths = &months
	}

	if err := uow.SaveRepository().Upsert(ctx, record); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if !session.IsTest() && !result.Simulated {
		s.publishCustomerSaved(ctx, profile, session, record)
	}

	message := "Offer applied. Your subscription stays active."
	if degraded {
		message = "Your offer is confirmed; the change will be reflected on your subscription shortly."
	}

	return &dto.OfferDecisionResponse{
		Status:   string(entity.SessionStatusSaved),
		Accepted: true,
		Message:  message,
	}, nil
}

// applyOffer runs the processor action. Failures degrade: the save is
// still recorded with a null action id. Test sessions never leave the
// process.
func (s *sessionService) applyOffer(ctx context.Context, session *entity.CancelSession, offer entity.ResolvedOffer) (*payment.ActionResult, bool) {
	if session.IsTest() {
		if offer.Type == entity.OfferTypePause {
			return s.applier.SimulatePause(), false
		}
		return s.applier.SimulateDiscount(offer.Percentage), false
	}

	var result *payment.ActionResult
	var err error
	switch offer.Type {
	case entity.OfferTypePause:
		result, err = s.applier.ApplyPause(ctx, session.SubscriptionRef, offer.DurationMonths)
	default:
		result, err = s.applier.ApplyDiscount(ctx, session.SubscriptionRef, offer.Percentage, offer.DurationMonths)
	}
	if err != nil {
		s.logger.Error("Session", "Payment action failed, recording degraded save", map[string]interface{}{
			"session_id":       session.Id,
			"subscription_ref": session.SubscriptionRef,
			"offer_type":       string(offer.Type),
			"error":            err.Error(),
		})
		return &payment.ActionResult{}, true
	}
	return result, false
}

// replayedAccept reports the already-recorded outcome without touching
// the processor again.
func (s *sessionService) replayedAccept() (*dto.OfferDecisionResponse, error) {
	return &dto.OfferDecisionResponse{
		Status:   string(entity.SessionStatusSaved),
		Accepted: true,
		Message:  "Offer applied. Your subscription stays active.",
	}, nil
}

func (s *sessionService) CompleteSession(ctx context.Context, token string, req *dto.CompleteSessionRequest) (*dto.CompleteSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findSession(ctx, uow, token)
	if err != nil {
		return nil, err
	}

	target := entity.CancelSessionStatus(req.Action)
	if !session.CanTransition(target) {
		return nil, serverutils.NewConflictError("session already completed")
	}

	completedAt := s.now()
	rows, err := uow.SessionRepository().Transition(ctx, session.Id, session.Status, target, nil, &completedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, serverutils.NewConflictError("session already completed")
	}

	return &dto.CompleteSessionResponse{Status: string(target)}, nil
}

func (s *sessionService) findSession(ctx context.Context, uow unitofwork.UnitOfWork, token string) (*entity.CancelSession, error) {
	session, err := uow.SessionRepository().FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}
	return session, nil
}

func (s *sessionService) publishCustomerSaved(ctx context.Context, profile *entity.BusinessProfile, session *entity.CancelSession, record *entity.SavedCustomerRecord) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: events.TypeCustomerSaved,
		Data: map[string]interface{}{
			"owner_user_id": profile.OwnerUserId.String(),
			"profile_id":    profile.Id.String(),
			"session_id":    session.Id.String(),
			"customer_ref":  session.CustomerRef,
			"save_type":     string(record.SaveType),
			"fee_per_month": record.FeePerMonth,
			"currency":      profile.Currency,
		},
		OccurredAt: s.now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Error("Session", "Failed to publish customer-saved event", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}
}

func offerToDto(offer entity.ResolvedOffer) *dto.OfferInfo {
	if offer.Type == entity.OfferTypeNone {
		return nil
	}
	return &dto.OfferInfo{
		Type:           string(offer.Type),
		Percentage:     offer.Percentage,
		DurationMonths: offer.DurationMonths,
	}
}

func generateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
