package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChurnRiskEventType enumerates the classified signals the scorer emits.
type ChurnRiskEventType string

const (
	RiskEventPaymentFailed     ChurnRiskEventType = "payment_failed"
	RiskEventPastDue           ChurnRiskEventType = "past_due"
	RiskEventUnpaid            ChurnRiskEventType = "unpaid"
	RiskEventCancelScheduled   ChurnRiskEventType = "cancel_scheduled"
	RiskEventTrialEndingSoon   ChurnRiskEventType = "trial_ending_soon"
	RiskEventRenewalDue        ChurnRiskEventType = "renewal_due"
	RiskEventSubscriptionEnded ChurnRiskEventType = "subscription_ended"
)

// RiskEventMetadata is a tagged union over the known signal shapes.
// Exactly one typed member is set for the common cases; anything a
// future classifier emits that has no typed shape yet lands in Extra.
type RiskEventMetadata struct {
	PaymentFailure *PaymentFailureMeta    `json:"payment_failure,omitempty"`
	Trial          *TrialMeta             `json:"trial,omitempty"`
	Renewal        *RenewalMeta           `json:"renewal,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
}

type PaymentFailureMeta struct {
	InvoiceRef  string `json:"invoice_ref"`
	DeclineCode string `json:"decline_code,omitempty"`
	AmountDue   int64  `json:"amount_due"`
	Currency    string `json:"currency"`
}

type TrialMeta struct {
	TrialEnd time.Time `json:"trial_end"`
}

type RenewalMeta struct {
	PeriodEnd time.Time `json:"period_end"`
}

// ChurnRiskEvent is one classified signal. Append-only audit trail;
// the scorer reads the recent window when recomputing a snapshot.
type ChurnRiskEvent struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	EventType  ChurnRiskEventType
	Severity   int
	OccurredAt time.Time
	Metadata   RiskEventMetadata
}

// ChurnRiskSnapshot is the current score for one user. One row per user,
// fully overwritten on every recompute; never patched incrementally.
type ChurnRiskSnapshot struct {
	UserId     uuid.UUID
	Score      int
	TopReasons []string // at most 5
	UpdatedAt  time.Time
}
