package entity

import (
	"time"

	"github.com/google/uuid"
)

// Canonical records mirror the processor's view of a customer. They are
// upserted from webhook payloads, keyed by the processor-assigned ids,
// and exist so risk scoring never has to call back out to the processor.

type CustomerSnapshot struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	CustomerRef string // processor-assigned customer id
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SubscriptionSnapshot struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	SubscriptionRef    string // processor-assigned subscription id
	CustomerRef        string
	Status             string // active, trialing, past_due, unpaid, canceled, paused
	CancelAtPeriodEnd  bool
	TrialEnd           *time.Time
	CurrentPeriodEnd   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type InvoiceSnapshot struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	InvoiceRef      string // processor-assigned invoice id
	SubscriptionRef string
	CustomerRef     string
	AmountDue       int64 // minor currency units
	Currency        string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
