package payment

import (
	"github.com/stripe/stripe-go/v74"
)

// BillingMode is how discounts attach to a subscription. Standard mode
// applies one coupon at the subscription level; flexible mode requires a
// coupon on every line item individually.
type BillingMode int

const (
	BillingModeStandard BillingMode = iota
	BillingModeFlexible
)

func (m BillingMode) String() string {
	if m == BillingModeFlexible {
		return "flexible"
	}
	return "standard"
}

// ResolveBillingMode reads the mode off the subscription object. It is
// never guessed from the item count; a single-item subscription can
// still be on flexible billing.
func ResolveBillingMode(sub *stripe.Subscription) BillingMode {
	if sub != nil && sub.Metadata["billing_mode"] == "flexible" {
		return BillingModeFlexible
	}
	return BillingModeStandard
}
