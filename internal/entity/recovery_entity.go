package entity

import (
	"time"

	"github.com/google/uuid"
)

type RecoveryCaseStatus string

const (
	RecoveryCaseOpen      RecoveryCaseStatus = "open"
	RecoveryCaseRecovered RecoveryCaseStatus = "recovered"
	RecoveryCaseExpired   RecoveryCaseStatus = "expired"
)

// ChurnReason classifies why the payment failed, derived from the
// processor's decline code at case creation.
type ChurnReason string

const (
	ChurnReasonCardExpired       ChurnReason = "card_expired"
	ChurnReasonInsufficientFunds ChurnReason = "insufficient_funds"
	ChurnReasonBankDecline       ChurnReason = "bank_decline"
	ChurnReasonNoRetryAttempted  ChurnReason = "no_retry_attempted"
	ChurnReasonUnknown           ChurnReason = "unknown"
)

// RecoveryCase tracks one failed-payment incident tied to one invoice.
// At most one case ever exists per invoice reference; status only moves
// open → recovered or open → expired, and terminal states are final.
type RecoveryCase struct {
	Id            uuid.UUID
	OwnerUserId   uuid.UUID
	CustomerRef   string
	InvoiceRef    string
	AmountAtRisk  int64 // minor currency units
	Currency      string
	Status        RecoveryCaseStatus
	ChurnReason   ChurnReason
	OpenedAt      time.Time
	DeadlineAt    time.Time // openedAt + 48h, fixed at creation
	FirstActionAt *time.Time
	ResolvedAt    *time.Time
}

type RecoveryActionType string

const (
	RecoveryActionMessageSent    RecoveryActionType = "message_sent"
	RecoveryActionNote           RecoveryActionType = "note"
	RecoveryActionMarkRecovered  RecoveryActionType = "marked_recovered"
	RecoveryActionMarkExpired    RecoveryActionType = "marked_expired"
)

// RecoveryAction is one entry in the append-only action log of a case.
type RecoveryAction struct {
	Id             uuid.UUID
	RecoveryCaseId uuid.UUID
	ActionType     RecoveryActionType
	Note           string
	CreatedAt      time.Time
}

// MapDeclineCode folds the processor's decline/error code into the small
// churn-reason enum. A first attempt with no further retry scheduled is
// "no retry attempted", not "unknown".
func MapDeclineCode(declineCode string, retryScheduled bool) ChurnReason {
	switch declineCode {
	case "expired_card":
		return ChurnReasonCardExpired
	case "insufficient_funds":
		return ChurnReasonInsufficientFunds
	case "do_not_honor", "generic_decline", "card_declined", "card_velocity_exceeded":
		return ChurnReasonBankDecline
	}
	if !retryScheduled {
		return ChurnReasonNoRetryAttempted
	}
	return ChurnReasonUnknown
}
