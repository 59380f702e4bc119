package payment

import (
	"math"
	"testing"

	"github.com/stripe/stripe-go/v74"
)

func TestMonthlyAmount(t *testing.T) {
	tests := []struct {
		name          string
		unitAmount    int64
		interval      string
		intervalCount int64
		quantity      int64
		want          float64
	}{
		{"monthly price as is", 4999, "month", 1, 1, 49.99},
		{"yearly spread over twelve months", 12000, "year", 1, 1, 10},
		{"weekly compounds", 1000, "week", 1, 1, 43.30},
		{"daily compounds", 100, "day", 1, 1, 30},
		{"every three months", 3000, "month", 3, 1, 10},
		{"quantity multiplies", 1000, "month", 1, 5, 50},
		{"zero interval count defaults to one", 1000, "month", 0, 1, 10},
		{"zero quantity defaults to one", 1000, "month", 1, 0, 10},
		{"unknown interval contributes nothing", 1000, "fortnight", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyAmount(tt.unitAmount, tt.interval, tt.intervalCount, tt.quantity)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("MonthlyAmount(%d, %q, %d, %d) = %v, want %v",
					tt.unitAmount, tt.interval, tt.intervalCount, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestSubscriptionMRR(t *testing.T) {
	sub := &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					Quantity: 1,
					Price: &stripe.Price{
						UnitAmount: 4999,
						Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth, IntervalCount: 1},
					},
				},
				{
					Quantity: 2,
					Price: &stripe.Price{
						UnitAmount: 12000,
						Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalYear, IntervalCount: 1},
					},
				},
				// One-off item without recurring pricing.
				{
					Quantity: 1,
					Price:    &stripe.Price{UnitAmount: 500},
				},
			},
		},
	}

	got := SubscriptionMRR(sub)
	want := 49.99 + 20.0
	if math.Abs(got-want) > 0.001 {
		t.Errorf("SubscriptionMRR = %v, want %v", got, want)
	}

	if SubscriptionMRR(nil) != 0 {
		t.Error("nil subscription should have zero MRR")
	}
	if SubscriptionMRR(&stripe.Subscription{}) != 0 {
		t.Error("subscription without items should have zero MRR")
	}
}
