package entity

import (
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from CancelSessionStatus
		to   CancelSessionStatus
		want bool
	}{
		{"started to survey", SessionStatusStarted, SessionStatusSurveyCompleted, true},
		{"started to abandoned", SessionStatusStarted, SessionStatusAbandoned, true},
		{"started straight to saved", SessionStatusStarted, SessionStatusSaved, false},
		{"started straight to cancelled", SessionStatusStarted, SessionStatusCancelled, false},
		{"survey to saved", SessionStatusSurveyCompleted, SessionStatusSaved, true},
		{"survey to cancelled", SessionStatusSurveyCompleted, SessionStatusCancelled, true},
		{"survey to abandoned", SessionStatusSurveyCompleted, SessionStatusAbandoned, true},
		{"survey resubmission", SessionStatusSurveyCompleted, SessionStatusSurveyCompleted, false},
		{"saved is final", SessionStatusSaved, SessionStatusCancelled, false},
		{"cancelled is final", SessionStatusCancelled, SessionStatusSaved, false},
		{"abandoned is final", SessionStatusAbandoned, SessionStatusSurveyCompleted, false},
		{"no transition back to started", SessionStatusSurveyCompleted, SessionStatusStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &CancelSession{Status: tt.from}
			if got := s.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []CancelSessionStatus{SessionStatusSaved, SessionStatusCancelled, SessionStatusAbandoned}
	for _, st := range terminal {
		s := &CancelSession{Status: st}
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", st)
		}
	}

	live := []CancelSessionStatus{SessionStatusStarted, SessionStatusSurveyCompleted}
	for _, st := range live {
		s := &CancelSession{Status: st}
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", st)
		}
	}
}

func TestIsTest(t *testing.T) {
	tests := []struct {
		name            string
		customerRef     string
		subscriptionRef string
		want            bool
	}{
		{"both refs present", "cus_123", "sub_456", false},
		{"missing customer ref", "", "sub_456", true},
		{"missing subscription ref", "cus_123", "", true},
		{"both missing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &CancelSession{CustomerRef: tt.customerRef, SubscriptionRef: tt.subscriptionRef}
			if got := s.IsTest(); got != tt.want {
				t.Errorf("IsTest() = %v, want %v", got, tt.want)
			}
		})
	}
}
