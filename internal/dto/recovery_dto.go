package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Recovery Case Views ---

type RecoveryCaseResponse struct {
	Id            uuid.UUID  `json:"id"`
	CustomerRef   string     `json:"customer_ref"`
	InvoiceRef    string     `json:"invoice_ref"`
	AmountAtRisk  int64      `json:"amount_at_risk"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	ChurnReason   string     `json:"churn_reason"`
	OpenedAt      time.Time  `json:"opened_at"`
	DeadlineAt    time.Time  `json:"deadline_at"`
	FirstActionAt *time.Time `json:"first_action_at,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// --- Case Actions ---

type AppendActionRequest struct {
	ActionType string `json:"action_type" validate:"required,oneof=message_sent note"`
	Note       string `json:"note,omitempty" validate:"max=2000"`
}

type AppendActionResponse struct {
	ActionId  uuid.UUID `json:"action_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpireCaseResponse reports the outcome of a manual expiry call.
// Expired is false when the case had already left the open state.
type ExpireCaseResponse struct {
	CaseId  uuid.UUID `json:"case_id"`
	Status  string    `json:"status"`
	Expired bool      `json:"expired"`
}

// --- Risk Views ---

type RiskSnapshotResponse struct {
	UserId     uuid.UUID `json:"user_id"`
	Score      int       `json:"score"`
	TopReasons []string  `json:"top_reasons"`
	UpdatedAt  time.Time `json:"updated_at"`
}
