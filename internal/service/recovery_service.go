package service

import (
	"context"
	"errors"
	"time"

	"churnguard-be/internal/dto"
	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/serverutils"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/specification"
	"churnguard-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRecoveryService manages the failed-payment case lifecycle. The
// webhook pipeline drives open/resolve inside its own transaction; the
// expire and action endpoints run standalone.
type IRecoveryService interface {
	OpenCaseForFailedInvoice(ctx context.Context, uow unitofwork.UnitOfWork, invoice *entity.InvoiceSnapshot, ownerUserId uuid.UUID, declineCode string, retryScheduled bool) (*entity.RecoveryCase, bool, error)
	ResolveCaseForInvoice(ctx context.Context, uow unitofwork.UnitOfWork, invoiceRef string) (bool, error)

	GetCase(ctx context.Context, ownerUserId, caseId uuid.UUID) (*dto.RecoveryCaseResponse, error)
	ExpireCase(ctx context.Context, ownerUserId, caseId uuid.UUID) (*dto.ExpireCaseResponse, error)
	AppendAction(ctx context.Context, ownerUserId, caseId uuid.UUID, req *dto.AppendActionRequest) (*dto.AppendActionResponse, error)
}

type recoveryService struct {
	uowFactory   unitofwork.RepositoryFactory
	logger       logger.ILogger
	caseDeadline time.Duration
	now          func() time.Time
}

func NewRecoveryService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, caseDeadline time.Duration) IRecoveryService {
	return &recoveryService{
		uowFactory:   uowFactory,
		logger:       log,
		caseDeadline: caseDeadline,
		now:          time.Now,
	}
}

// OpenCaseForFailedInvoice creates the case unless one already exists
// for the invoice, in any status. The unique constraint on invoice_ref
// backs up the existence check against concurrent deliveries. Returns
// the case and whether this call created it.
func (s *recoveryService) OpenCaseForFailedInvoice(ctx context.Context, uow unitofwork.UnitOfWork, invoice *entity.InvoiceSnapshot, ownerUserId uuid.UUID, declineCode string, retryScheduled bool) (*entity.RecoveryCase, bool, error) {
	recoveryRepo := uow.RecoveryRepository()

	existing, err := recoveryRepo.FindCaseByInvoiceRef(ctx, invoice.InvoiceRef)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	openedAt := s.now()
	newCase := &entity.RecoveryCase{
		Id:           uuid.New(),
		OwnerUserId:  ownerUserId,
		CustomerRef:  invoice.CustomerRef,
		InvoiceRef:   invoice.InvoiceRef,
		AmountAtRisk: invoice.AmountDue,
		Currency:     invoice.Currency,
		Status:       entity.RecoveryCaseOpen,
		ChurnReason:  entity.MapDeclineCode(declineCode, retryScheduled),
		OpenedAt:     openedAt,
		DeadlineAt:   openedAt.Add(s.caseDeadline),
	}

	if err := recoveryRepo.CreateCase(ctx, newCase); err != nil {
		if errors.Is(err, contract.ErrDuplicateCase) {
			// A concurrent delivery won the insert. Treat as created elsewhere.
			s.logger.Info("Recovery", "Case insert lost race, already exists", map[string]interface{}{
				"invoice_ref": invoice.InvoiceRef,
			})
			return nil, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("Recovery", "Case opened", map[string]interface{}{
		"case_id":      newCase.Id,
		"invoice_ref":  newCase.InvoiceRef,
		"churn_reason": string(newCase.ChurnReason),
		"amount":       newCase.AmountAtRisk,
	})
	return newCase, true, nil
}

// ResolveCaseForInvoice flips an open case to recovered. The update is
// conditioned on the status still being open, so a duplicate succeeded
// event is a no-op. Returns whether this call resolved it.
func (s *recoveryService) ResolveCaseForInvoice(ctx context.Context, uow unitofwork.UnitOfWork, invoiceRef string) (bool, error) {
	recoveryRepo := uow.RecoveryRepository()

	rows, err := recoveryRepo.ResolveCase(ctx, invoiceRef, s.now())
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	resolved, err := recoveryRepo.FindCaseByInvoiceRef(ctx, invoiceRef)
	if err != nil {
		return false, err
	}
	if resolved != nil {
		action := &entity.RecoveryAction{
			Id:             uuid.New(),
			RecoveryCaseId: resolved.Id,
			ActionType:     entity.RecoveryActionMarkRecovered,
		}
		if err := recoveryRepo.AppendAction(ctx, action); err != nil {
			return false, err
		}
	}

	s.logger.Info("Recovery", "Case resolved", map[string]interface{}{
		"invoice_ref": invoiceRef,
	})
	return true, nil
}

func (s *recoveryService) GetCase(ctx context.Context, ownerUserId, caseId uuid.UUID) (*dto.RecoveryCaseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := s.findOwnedCase(ctx, uow, ownerUserId, caseId)
	if err != nil {
		return nil, err
	}
	return mapCaseToResponse(c), nil
}

// ExpireCase is the only path to the expired state. Nothing sweeps past
// deadlines automatically; the owning dashboard calls this explicitly.
func (s *recoveryService) ExpireCase(ctx context.Context, ownerUserId, caseId uuid.UUID) (*dto.ExpireCaseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	c, err := s.findOwnedCase(ctx, uow, ownerUserId, caseId)
	if err != nil {
		return nil, err
	}

	rows, err := uow.RecoveryRepository().ExpireCase(ctx, caseId, s.now())
	if err != nil {
		return nil, err
	}

	expired := rows > 0
	status := c.Status
	if expired {
		status = entity.RecoveryCaseExpired
		action := &entity.RecoveryAction{
			Id:             uuid.New(),
			RecoveryCaseId: caseId,
			ActionType:     entity.RecoveryActionMarkExpired,
		}
		if err := uow.RecoveryRepository().AppendAction(ctx, action); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.ExpireCaseResponse{
		CaseId:  caseId,
		Status:  string(status),
		Expired: expired,
	}, nil
}

// AppendAction records a human follow-up on a case and stamps the
// first-action timestamp on the first one.
func (s *recoveryService) AppendAction(ctx context.Context, ownerUserId, caseId uuid.UUID, req *dto.AppendActionRequest) (*dto.AppendActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := s.findOwnedCase(ctx, uow, ownerUserId, caseId); err != nil {
		return nil, err
	}

	now := s.now()
	action := &entity.RecoveryAction{
		Id:             uuid.New(),
		RecoveryCaseId: caseId,
		ActionType:     entity.RecoveryActionType(req.ActionType),
		Note:           req.Note,
	}
	if err := uow.RecoveryRepository().AppendAction(ctx, action); err != nil {
		return nil, err
	}
	if err := uow.RecoveryRepository().MarkFirstAction(ctx, caseId, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.AppendActionResponse{
		ActionId:  action.Id,
		CreatedAt: now,
	}, nil
}

func (s *recoveryService) findOwnedCase(ctx context.Context, uow unitofwork.UnitOfWork, ownerUserId, caseId uuid.UUID) (*entity.RecoveryCase, error) {
	c, err := uow.RecoveryRepository().FindCase(ctx,
		specification.ByID{ID: caseId},
		specification.Filter("owner_user_id", ownerUserId),
	)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, serverutils.NewNotFoundError("recovery case not found")
	}
	return c, nil
}

func mapCaseToResponse(c *entity.RecoveryCase) *dto.RecoveryCaseResponse {
	return &dto.RecoveryCaseResponse{
		Id:            c.Id,
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
