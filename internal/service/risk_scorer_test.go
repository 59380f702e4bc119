package service

import (
	"testing"
	"time"
)

func TestComputeRiskScore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	in := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name        string
		conditions  riskConditions
		wantScore   int
		wantReasons int
	}{
		{
			name:        "healthy subscription",
			conditions:  riskConditions{Status: "active"},
			wantScore:   0,
			wantReasons: 0,
		},
		{
			name: "single payment failure",
			conditions: riskConditions{
				PaymentFailures7d: 1,
				Status:            "active",
			},
			wantScore:   50,
			wantReasons: 1,
		},
		{
			name: "repeated payment failures",
			conditions: riskConditions{
				PaymentFailures7d: 3,
				Status:            "active",
			},
			wantScore:   70,
			wantReasons: 2,
		},
		{
			name:        "past due",
			conditions:  riskConditions{Status: "past_due"},
			wantScore:   40,
			wantReasons: 1,
		},
		{
			name:        "unpaid",
			conditions:  riskConditions{Status: "unpaid"},
			wantScore:   40,
			wantReasons: 1,
		},
		{
			name: "cancellation scheduled",
			conditions: riskConditions{
				Status:            "active",
				CancelAtPeriodEnd: true,
			},
			wantScore:   35,
			wantReasons: 1,
		},
		{
			name: "trial ending tomorrow",
			conditions: riskConditions{
				Status:   "trialing",
				TrialEnd: in(24 * time.Hour),
			},
			wantScore:   25,
			wantReasons: 1,
		},
		{
			name: "trial ending next week is not at risk",
			conditions: riskConditions{
				Status:   "trialing",
				TrialEnd: in(7 * 24 * time.Hour),
			},
			wantScore:   0,
			wantReasons: 0,
		},
		{
			name: "trial already ended",
			conditions: riskConditions{
				Status:   "active",
				TrialEnd: in(-time.Hour),
			},
			wantScore:   0,
			wantReasons: 0,
		},
		{
			name: "renewal due soon on active",
			conditions: riskConditions{
				Status:           "active",
				CurrentPeriodEnd: in(2 * 24 * time.Hour),
			},
			wantScore:   15,
			wantReasons: 1,
		},
		{
			name: "renewal due soon but canceled status does not count",
			conditions: riskConditions{
				Status:           "canceled",
				CurrentPeriodEnd: in(2 * 24 * time.Hour),
			},
			wantScore:   0,
			wantReasons: 0,
		},
		{
			name: "everything at once clamps to 100",
			conditions: riskConditions{
				PaymentFailures7d: 2,
				Status:            "trialing",
				CancelAtPeriodEnd: true,
				TrialEnd:          in(24 * time.Hour),
			},
			wantScore:   100,
			wantReasons: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := computeRiskScore(tt.conditions, now)
			if score != tt.wantScore {
				t.Errorf("score = %d, want %d", score, tt.wantScore)
			}
			if len(reasons) != tt.wantReasons {
				t.Errorf("reasons = %v (len %d), want %d", reasons, len(reasons), tt.wantReasons)
			}
			if len(reasons) > 5 {
				t.Errorf("reasons exceed cap of 5: %v", reasons)
			}
		})
	}
}
