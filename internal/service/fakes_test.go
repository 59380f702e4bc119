package service

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/payment"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/specification"
	"churnguard-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory unit of work for service tests. Begin snapshots the mutable
// state and Rollback restores it, so transactional services can be
// checked for leaving half-written state behind.

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeUnitOfWork struct {
	sessions  *fakeSessionRepo
	profiles  *fakeProfileRepo
	saves     *fakeSaveRepo
	recovery  *fakeRecoveryRepo
	users     *fakeUserRepo
	snapshots *fakeSnapshotRepo
	processed *fakeProcessedEventRepo

	begun      int
	committed  int
	rolledBack int
	snapshot   *uowSnapshot
}

type uowSnapshot struct {
	session *entity.CancelSession
	record  *entity.SavedCustomerRecord
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.begun++
	snap := &uowSnapshot{}
	if u.sessions != nil && u.sessions.session != nil {
		c := *u.sessions.session
		snap.session = &c
	}
	if u.saves != nil {
		snap.record = u.saves.record
	}
	u.snapshot = snap
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed++
	u.snapshot = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.rolledBack++
	if u.snapshot != nil {
		if u.sessions != nil {
			u.sessions.session = u.snapshot.session
		}
		if u.saves != nil {
			u.saves.record = u.snapshot.record
		}
		u.snapshot = nil
	}
	return nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.users }

func (u *fakeUnitOfWork) ProfileRepository() contract.ProfileRepository { return u.profiles }

func (u *fakeUnitOfWork) SnapshotRepository() contract.SnapshotRepository { return u.snapshots }

func (u *fakeUnitOfWork) RiskRepository() contract.RiskRepository { return nil }

func (u *fakeUnitOfWork) RecoveryRepository() contract.RecoveryRepository { return u.recovery }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository { return u.sessions }

func (u *fakeUnitOfWork) SaveRepository() contract.SaveRepository { return u.saves }
func (u *fakeUnitOfWork) ProcessedEventRepository() contract.ProcessedEventRepository {
	return u.processed
}

type fakeSessionRepo struct {
	session       *entity.CancelSession
	transitionErr error
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.CancelSession) error {
	c := *session
	r.session = &c
	return nil
}

func (r *fakeSessionRepo) FindByToken(ctx context.Context, token string) (*entity.CancelSession, error) {
	if r.session != nil && r.session.SessionToken == token {
		c := *r.session
		return &c, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancelSession, error) {
	if r.session != nil && r.session.Id == id {
		c := *r.session
		return &c, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) CompleteSurvey(ctx context.Context, id uuid.UUID, exitReason, customFeedback string, offerPresented entity.OfferType) (int64, error) {
	if r.session == nil || r.session.Id != id || r.session.Status != entity.SessionStatusStarted {
		return 0, nil
	}
	r.session.Status = entity.SessionStatusSurveyCompleted
	r.session.ExitReason = exitReason
	r.session.CustomFeedback = customFeedback
	r.session.OfferTypePresented = offerPresented
	return 1, nil
}

func (r *fakeSessionRepo) Transition(ctx context.Context, id uuid.UUID, from, to entity.CancelSessionStatus, offerAccepted *bool, completedAt *time.Time) (int64, error) {
	if r.transitionErr != nil {
		return 0, r.transitionErr
	}
	if r.session == nil || r.session.Id != id || r.session.Status != from {
		return 0, nil
	}
	r.session.Status = to
	r.session.OfferAccepted = offerAccepted
	r.session.CompletedAt = completedAt
	return 1, nil
}

type fakeProfileRepo struct {
	profile *entity.BusinessProfile
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *entity.BusinessProfile) error {
	return nil
}

func (r *fakeProfileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BusinessProfile, error) {
	return r.profile, nil
}

func (r *fakeProfileRepo) FindByOwner(ctx context.Context, ownerUserId uuid.UUID) (*entity.BusinessProfile, error) {
	return r.profile, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *entity.BusinessProfile) error {
	return nil
}

type fakeSaveRepo struct {
	record    *entity.SavedCustomerRecord
	upsertErr error
}

func (r *fakeSaveRepo) Upsert(ctx context.Context, record *entity.SavedCustomerRecord) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	c := *record
	r.record = &c
	return nil
}

func (r *fakeSaveRepo) FindBySessionID(ctx context.Context, sessionId uuid.UUID) (*entity.SavedCustomerRecord, error) {
	if r.record != nil && r.record.CancelSessionId == sessionId {
		c := *r.record
		return &c, nil
	}
	return nil, nil
}

func (r *fakeSaveRepo) SumFeesSince(ctx context.Context, profileId uuid.UUID, since time.Time) (float64, error) {
	return 0, nil
}

type fakeRecoveryRepo struct {
	caseByInvoice *entity.RecoveryCase
	findErr       error
	resolveRows   int64
	resolveErr    error
	actions       []*entity.RecoveryAction
	createErr     error
}

func (r *fakeRecoveryRepo) CreateCase(ctx context.Context, c *entity.RecoveryCase) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *c
	r.caseByInvoice = &copied
	return nil
}

func (r *fakeRecoveryRepo) FindCase(ctx context.Context, specs ...specification.Specification) (*entity.RecoveryCase, error) {
	return r.caseByInvoice, nil
}

func (r *fakeRecoveryRepo) FindCaseByInvoiceRef(ctx context.Context, invoiceRef string) (*entity.RecoveryCase, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.caseByInvoice != nil && r.caseByInvoice.InvoiceRef == invoiceRef {
		c := *r.caseByInvoice
		return &c, nil
	}
	return nil, nil
}

func (r *fakeRecoveryRepo) ResolveCase(ctx context.Context, invoiceRef string, resolvedAt time.Time) (int64, error) {
	return r.resolveRows, r.resolveErr
}

func (r *fakeRecoveryRepo) ExpireCase(ctx context.Context, caseId uuid.UUID, resolvedAt time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeRecoveryRepo) AppendAction(ctx context.Context, action *entity.RecoveryAction) error {
	r.actions = append(r.actions, action)
	return nil
}

func (r *fakeRecoveryRepo) MarkFirstAction(ctx context.Context, caseId uuid.UUID, at time.Time) error {
	return nil
}

type fakeUserRepo struct {
	user *entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return r.user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeSnapshotRepo struct {
	customerUpserts int
}

func (r *fakeSnapshotRepo) UpsertCustomer(ctx context.Context, snap *entity.CustomerSnapshot) error {
	r.customerUpserts++
	return nil
}

func (r *fakeSnapshotRepo) UpsertSubscription(ctx context.Context, snap *entity.SubscriptionSnapshot) error {
	return nil
}

func (r *fakeSnapshotRepo) UpsertInvoice(ctx context.Context, snap *entity.InvoiceSnapshot) error {
	return nil
}

func (r *fakeSnapshotRepo) FindCustomerByRef(ctx context.Context, customerRef string) (*entity.CustomerSnapshot, error) {
	return nil, nil
}

func (r *fakeSnapshotRepo) FindSubscriptionByRef(ctx context.Context, subscriptionRef string) (*entity.SubscriptionSnapshot, error) {
	return nil, nil
}

func (r *fakeSnapshotRepo) FindInvoiceByRef(ctx context.Context, invoiceRef string) (*entity.InvoiceSnapshot, error) {
	return nil, nil
}

type fakeProcessedEventRepo struct {
	exists    bool
	createErr error
	created   []string
}

func (r *fakeProcessedEventRepo) Exists(ctx context.Context, eventId string) (bool, error) {
	return r.exists, nil
}

func (r *fakeProcessedEventRepo) Create(ctx context.Context, event *entity.ProcessedEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, event.EventId)
	return nil
}

type fakeApplier struct {
	discountCalls int
	pauseCalls    int
	err           error
}

func (a *fakeApplier) ApplyDiscount(ctx context.Context, subscriptionRef string, percentage, durationMonths int) (*payment.ActionResult, error) {
	a.discountCalls++
	if a.err != nil {
		return nil, a.err
	}
	actionId := "co_fake"
	return &payment.ActionResult{
		ActionId:    &actionId,
		OriginalMrr: 100,
		NewMrr:      100 * (1 - float64(percentage)/100),
	}, nil
}

func (a *fakeApplier) ApplyPause(ctx context.Context, subscriptionRef string, pauseMonths int) (*payment.ActionResult, error) {
	a.pauseCalls++
	if a.err != nil {
		return nil, a.err
	}
	actionId := "sub_fake"
	return &payment.ActionResult{ActionId: &actionId, OriginalMrr: 100, NewMrr: 0}, nil
}

func (a *fakeApplier) SimulateDiscount(percentage int) *payment.ActionResult {
	return &payment.ActionResult{OriginalMrr: 50, NewMrr: 50 * (1 - float64(percentage)/100), Simulated: true}
}

func (a *fakeApplier) SimulatePause() *payment.ActionResult {
	return &payment.ActionResult{OriginalMrr: 50, NewMrr: 0, Simulated: true}
}
