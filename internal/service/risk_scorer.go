package service

import (
	"fmt"
	"time"
)

const (
	paymentFailureWindow = 7 * 24 * time.Hour
	trialEndingWindow    = 48 * time.Hour
	renewalDueWindow     = 3 * 24 * time.Hour
)

// riskConditions is everything the scorer looks at for one user. The
// conditions are independent; each true one adds its weight.
type riskConditions struct {
	PaymentFailures7d int64
	Status            string
	CancelAtPeriodEnd bool
	TrialEnd          *time.Time
	CurrentPeriodEnd  *time.Time
}

// computeRiskScore turns the observed conditions into a 0-100 score plus
// at most five human-readable reasons, ordered by weight.
func computeRiskScore(c riskConditions, now time.Time) (int, []string) {
	score := 0
	var reasons []string

	if c.PaymentFailures7d >= 1 {
		score += 50
		reasons = append(reasons, "Payment failed in the last 7 days")
	}
	if c.PaymentFailures7d >= 2 {
		score += 20
		reasons = append(reasons, fmt.Sprintf("%d payment failures in the last 7 days", c.PaymentFailures7d))
	}

	switch c.Status {
	case "past_due":
		score += 40
		reasons = append(reasons, "Subscription is past due")
	case "unpaid":
		score += 40
		reasons = append(reasons, "Subscription is unpaid")
	}

	if c.CancelAtPeriodEnd {
		score += 35
		reasons = append(reasons, "Cancellation scheduled at period end")
	}

	if c.TrialEnd != nil && c.TrialEnd.After(now) && c.TrialEnd.Sub(now) <= trialEndingWindow {
		score += 25
		reasons = append(reasons, "Trial ends within 48 hours")
	}

	if (c.Status == "active" || c.Status == "trialing") &&
		c.CurrentPeriodEnd != nil && c.CurrentPeriodEnd.After(now) &&
		c.CurrentPeriodEnd.Sub(now) <= renewalDueWindow {
		score += 15
		reasons = append(reasons, "Renewal due within 3 days")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}

	return score, reasons
}
