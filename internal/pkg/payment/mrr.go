package payment

import (
	"github.com/stripe/stripe-go/v74"
)

// MonthlyAmount normalizes one billed line item to its monthly-equivalent
// revenue in major currency units. Yearly prices spread over 12 months,
// weekly prices compound at 4.33 weeks per month, daily at 30 days.
func MonthlyAmount(unitAmount int64, interval string, intervalCount int64, quantity int64) float64 {
	if intervalCount <= 0 {
		intervalCount = 1
	}
	if quantity <= 0 {
		quantity = 1
	}

	amount := float64(unitAmount)
	switch interval {
	case "month":
		// as-is
	case "year":
		amount = amount / 12
	case "week":
		amount = amount * 4.33
	case "day":
		amount = amount * 30
	default:
		return 0
	}

	amount = amount / float64(intervalCount)
	amount = amount * float64(quantity)

	// minor units → major units
	return amount / 100
}

// SubscriptionMRR sums the monthly-equivalent of every item on the
// subscription. Items without recurring pricing contribute nothing.
func SubscriptionMRR(sub *stripe.Subscription) float64 {
	if sub == nil || sub.Items == nil {
		return 0
	}

	var total float64
	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil || item.Price.Recurring == nil {
			continue
		}
		total += MonthlyAmount(
			item.Price.UnitAmount,
			string(item.Price.Recurring.Interval),
			item.Price.Recurring.IntervalCount,
			item.Quantity,
		)
	}
	return total
}
