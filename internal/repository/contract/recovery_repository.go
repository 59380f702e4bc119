package contract

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RecoveryRepository interface {
	// CreateCase inserts a new case. A unique-constraint violation on
	// invoice_ref is surfaced as ErrDuplicateCase so concurrent
	// deliveries read as "already created".
	CreateCase(ctx context.Context, c *entity.RecoveryCase) error
	FindCase(ctx context.Context, specs ...specification.Specification) (*entity.RecoveryCase, error)
	FindCaseByInvoiceRef(ctx context.Context, invoiceRef string) (*entity.RecoveryCase, error)

	// ResolveCase flips open → recovered for the invoice, conditioned on
	// status still being open at write time. Returns the number of rows
	// updated; 0 means the case was missing or already terminal.
	ResolveCase(ctx context.Context, invoiceRef string, resolvedAt time.Time) (int64, error)

	// ExpireCase flips open → expired with the same CAS semantics.
	ExpireCase(ctx context.Context, caseId uuid.UUID, resolvedAt time.Time) (int64, error)

	AppendAction(ctx context.Context, action *entity.RecoveryAction) error
	// MarkFirstAction stamps first_action_at if it is still null.
	MarkFirstAction(ctx context.Context, caseId uuid.UUID, at time.Time) error
}
