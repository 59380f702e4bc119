package dto

import (
	"github.com/google/uuid"
)

// --- Session Creation (server-to-server) ---

// CreateSessionRequest starts a cancel flow for one customer. Both ids
// are optional; a session without them runs in test mode and never
// touches the payment processor.
type CreateSessionRequest struct {
	CustomerId     string `json:"customer_id,omitempty"`
	SubscriptionId string `json:"subscription_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionToken string    `json:"session_token"`
	CancelUrl    string    `json:"cancel_url"`
	SessionId    uuid.UUID `json:"session_id"`
}

// --- Widget Session Fetch (public) ---

type SessionInfo struct {
	Id                 uuid.UUID `json:"id"`
	Status             string    `json:"status"`
	ExitReason         string    `json:"exit_reason,omitempty"`
	OfferTypePresented string    `json:"offer_type_presented,omitempty"`
	OfferAccepted      *bool     `json:"offer_accepted,omitempty"`
}

// WidgetConfig is everything the embedded widget needs to render.
type WidgetConfig struct {
	SurveyOptions  []string               `json:"survey_options"`
	OfferSettings  OfferSettings          `json:"offer_settings"`
	Branding       map[string]interface{} `json:"branding"`
	WidgetSettings map[string]interface{} `json:"widget_settings"`
	IsActive       bool                   `json:"is_active"`
}

type OfferSettings struct {
	DefaultOfferType string `json:"default_offer_type"`
	DiscountPct      int    `json:"discount_pct"`
	DiscountMonths   int    `json:"discount_months"`
	PauseMonths      int    `json:"pause_months"`
}

type GetSessionResponse struct {
	Session SessionInfo  `json:"session"`
	Config  WidgetConfig `json:"config"`
}

// --- Survey Submission ---

type SubmitSurveyRequest struct {
	ExitReason     string `json:"exit_reason" validate:"required,max=100"`
	CustomFeedback string `json:"custom_feedback,omitempty" validate:"max=2000"`
}

// OfferInfo is the resolved offer shown after the survey. Nil when the
// resolver lands on "none".
type OfferInfo struct {
	Type           string `json:"type"`
	Percentage     int    `json:"percentage,omitempty"`
	DurationMonths int    `json:"duration_months,omitempty"`
}

type SubmitSurveyResponse struct {
	Status string     `json:"status"`
	Offer  *OfferInfo `json:"offer"`
}

// --- Offer Decision ---

type OfferDecisionRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

type OfferDecisionResponse struct {
	Status   string `json:"status"` // saved or cancelled
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// --- Explicit Completion ---

type CompleteSessionRequest struct {
	Action string `json:"action" validate:"required,oneof=cancelled abandoned"`
}

type CompleteSessionResponse struct {
	Status string `json:"status"`
}
