package dto

// WebhookAckResponse is returned to the payment processor. The processor
// only inspects the HTTP status, but the status field makes redelivery
// behaviour observable in its dashboard logs.
type WebhookAckResponse struct {
	Received bool   `json:"received"`
	Status   string `json:"status"` // processed, ignored, already_processed
}

const (
	WebhookStatusProcessed        = "processed"
	WebhookStatusIgnored          = "ignored"
	WebhookStatusAlreadyProcessed = "already_processed"
)
