package entity

import (
	"testing"
)

func TestMapDeclineCode(t *testing.T) {
	tests := []struct {
		name           string
		declineCode    string
		retryScheduled bool
		want           ChurnReason
	}{
		{"expired card", "expired_card", true, ChurnReasonCardExpired},
		{"insufficient funds", "insufficient_funds", true, ChurnReasonInsufficientFunds},
		{"do not honor", "do_not_honor", true, ChurnReasonBankDecline},
		{"generic decline", "generic_decline", true, ChurnReasonBankDecline},
		{"card declined", "card_declined", false, ChurnReasonBankDecline},
		{"velocity exceeded", "card_velocity_exceeded", true, ChurnReasonBankDecline},
		{"unrecognized with retry pending", "weird_new_code", true, ChurnReasonUnknown},
		{"unrecognized without retry", "weird_new_code", false, ChurnReasonNoRetryAttempted},
		{"empty code without retry", "", false, ChurnReasonNoRetryAttempted},
		{"empty code with retry", "", true, ChurnReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDeclineCode(tt.declineCode, tt.retryScheduled)
			if got != tt.want {
				t.Errorf("MapDeclineCode(%q, %v) = %q, want %q", tt.declineCode, tt.retryScheduled, got, tt.want)
			}
		})
	}
}
