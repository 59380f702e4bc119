package contract

import (
	"context"

	"churnguard-be/internal/entity"
)

// SnapshotRepository upserts the canonical customer/subscription/invoice
// records keyed by their processor-assigned ids.
type SnapshotRepository interface {
	UpsertCustomer(ctx context.Context, snap *entity.CustomerSnapshot) error
	UpsertSubscription(ctx context.Context, snap *entity.SubscriptionSnapshot) error
	UpsertInvoice(ctx context.Context, snap *entity.InvoiceSnapshot) error

	FindCustomerByRef(ctx context.Context, customerRef string) (*entity.CustomerSnapshot, error)
	FindSubscriptionByRef(ctx context.Context, subscriptionRef string) (*entity.SubscriptionSnapshot, error)
	FindInvoiceByRef(ctx context.Context, invoiceRef string) (*entity.InvoiceSnapshot, error)
}
