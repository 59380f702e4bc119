package entity

import (
	"time"

	"github.com/google/uuid"
)

type CancelSessionStatus string

const (
	SessionStatusStarted         CancelSessionStatus = "started"
	SessionStatusSurveyCompleted CancelSessionStatus = "survey_completed"
	SessionStatusSaved           CancelSessionStatus = "saved"
	SessionStatusCancelled       CancelSessionStatus = "cancelled"
	SessionStatusAbandoned       CancelSessionStatus = "abandoned"
)

// CancelSession is one customer's pass through the survey → offer →
// outcome flow, identified by an opaque token. A session without real
// customer/subscription references is a test session and must never
// reach the payment processor.
type CancelSession struct {
	Id                 uuid.UUID
	ProfileId          uuid.UUID
	CustomerRef        string
	SubscriptionRef    string
	SessionToken       string
	Status             CancelSessionStatus
	ExitReason         string
	CustomFeedback     string
	OfferTypePresented OfferType
	OfferAccepted      *bool
	StartedAt          time.Time
	CompletedAt        *time.Time
}

// IsTest reports whether the session carries no real processor
// references and therefore runs in simulated mode.
func (s *CancelSession) IsTest() bool {
	return s.CustomerRef == "" || s.SubscriptionRef == ""
}

// IsTerminal reports whether the session has reached a final state.
// survey_completed is the only non-initial state that can still move.
func (s *CancelSession) IsTerminal() bool {
	switch s.Status {
	case SessionStatusSaved, SessionStatusCancelled, SessionStatusAbandoned:
		return true
	}
	return false
}

// CanTransition encodes the state machine:
// started → survey_completed, started/survey_completed → terminal.
func (s *CancelSession) CanTransition(to CancelSessionStatus) bool {
	switch to {
	case SessionStatusSurveyCompleted:
		return s.Status == SessionStatusStarted
	case SessionStatusSaved, SessionStatusCancelled:
		return s.Status == SessionStatusSurveyCompleted
	case SessionStatusAbandoned:
		return s.Status == SessionStatusStarted || s.Status == SessionStatusSurveyCompleted
	}
	return false
}
