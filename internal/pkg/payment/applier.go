package payment

import (
	"context"
	"fmt"
	"time"

	"churnguard-be/internal/pkg/logger"
	"churnguard-be/internal/pkg/serverutils"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/coupon"
	sub "github.com/stripe/stripe-go/v74/subscription"
	subitem "github.com/stripe/stripe-go/v74/subscriptionitem"
)

// ActionResult reports what a retention action did to the subscription.
// ActionId is nil when the processor call failed or when the session ran
// in simulated mode.
type ActionResult struct {
	ActionId    *string
	OriginalMrr float64
	NewMrr      float64
	Simulated   bool
}

// Applier executes retention offers against the payment processor.
type Applier interface {
	ApplyDiscount(ctx context.Context, subscriptionRef string, percentage, durationMonths int) (*ActionResult, error)
	ApplyPause(ctx context.Context, subscriptionRef string, pauseMonths int) (*ActionResult, error)
	SimulateDiscount(percentage int) *ActionResult
	SimulatePause() *ActionResult
}

type StripeApplier struct {
	mockMrr float64
	logger  logger.ILogger
	now     func() time.Time
}

func NewStripeApplier(apiKey string, mockMrr float64, log logger.ILogger) *StripeApplier {
	stripe.Key = apiKey
	return &StripeApplier{
		mockMrr: mockMrr,
		logger:  log,
		now:     time.Now,
	}
}

// ApplyDiscount creates a repeating percentage-off coupon for the agreed
// duration and attaches it to the subscription. On standard billing one
// coupon goes on the subscription; on flexible billing every line item
// gets its own discount entry.
func (a *StripeApplier) ApplyDiscount(ctx context.Context, subscriptionRef string, percentage, durationMonths int) (*ActionResult, error) {
	subscription, err := a.retrieve(ctx, subscriptionRef)
	if err != nil {
		return nil, err
	}
	originalMrr := SubscriptionMRR(subscription)

	couponParams := &stripe.CouponParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PercentOff:       stripe.Float64(float64(percentage)),
		Duration:         stripe.String(string(stripe.CouponDurationRepeating)),
		DurationInMonths: stripe.Int64(int64(durationMonths)),
		Name:             stripe.String(fmt.Sprintf("Retention %d%% off (%dmo)", percentage, durationMonths)),
	}
	c, err := coupon.New(couponParams)
	if err != nil {
		a.logger.Error("Payment", "Coupon creation failed", map[string]interface{}{
			"subscription_ref": subscriptionRef,
			"percentage":       percentage,
			"duration_months":  durationMonths,
			"error":            err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment processor rejected coupon creation", err)
	}

	mode := ResolveBillingMode(subscription)
	switch mode {
	case BillingModeFlexible:
		err = a.applyItemDiscounts(ctx, subscription, c.ID)
	default:
		updateParams := &stripe.SubscriptionParams{
			Params: stripe.Params{
				Context: ctx,
			},
			Coupon: stripe.String(c.ID),
		}
		_, err = sub.Update(subscriptionRef, updateParams)
	}
	if err != nil {
		a.logger.Error("Payment", "Discount application failed", map[string]interface{}{
			"subscription_ref": subscriptionRef,
			"coupon_id":        c.ID,
			"billing_mode":     mode.String(),
			"error":            err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment processor rejected discount", err)
	}

	newMrr := originalMrr * (1 - float64(percentage)/100)
	a.logger.Info("Payment", "Discount applied", map[string]interface{}{
		"subscription_ref": subscriptionRef,
		"coupon_id":        c.ID,
		"billing_mode":     mode.String(),
		"original_mrr":     originalMrr,
		"new_mrr":          newMrr,
	})

	return &ActionResult{
		ActionId:    stripe.String(c.ID),
		OriginalMrr: originalMrr,
		NewMrr:      newMrr,
	}, nil
}

// applyItemDiscounts attaches the coupon to every line item. The v74
// client has no typed field for per-item discounts, so the parameter is
// set through the extras mechanism.
func (a *StripeApplier) applyItemDiscounts(ctx context.Context, subscription *stripe.Subscription, couponId string) error {
	if subscription.Items == nil {
		return nil
	}
	for _, item := range subscription.Items.Data {
		params := &stripe.SubscriptionItemParams{
			Params: stripe.Params{
				Context: ctx,
			},
		}
		params.AddExtra("discounts[0][coupon]", couponId)
		if _, err := subitem.Update(item.ID, params); err != nil {
			return fmt.Errorf("discount item %s: %w", item.ID, err)
		}
	}
	return nil
}

// ApplyPause suspends billing until now + pauseMonths. Invoices raised
// during the pause are voided rather than left to collect.
func (a *StripeApplier) ApplyPause(ctx context.Context, subscriptionRef string, pauseMonths int) (*ActionResult, error) {
	subscription, err := a.retrieve(ctx, subscriptionRef)
	if err != nil {
		return nil, err
	}
	originalMrr := SubscriptionMRR(subscription)

	resumesAt := a.now().AddDate(0, pauseMonths, 0)
	updateParams := &stripe.SubscriptionParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PauseCollection: &stripe.SubscriptionPauseCollectionParams{
			Behavior:  stripe.String("void"),
			ResumesAt: stripe.Int64(resumesAt.Unix()),
		},
	}
	updated, err := sub.Update(subscriptionRef, updateParams)
	if err != nil {
		a.logger.Error("Payment", "Pause application failed", map[string]interface{}{
			"subscription_ref": subscriptionRef,
			"pause_months":     pauseMonths,
			"error":            err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment processor rejected pause", err)
	}

	a.logger.Info("Payment", "Billing paused", map[string]interface{}{
		"subscription_ref": subscriptionRef,
		"resumes_at":       resumesAt.Format(time.RFC3339),
		"original_mrr":     originalMrr,
	})

	return &ActionResult{
		ActionId:    stripe.String(updated.ID),
		OriginalMrr: originalMrr,
		NewMrr:      0,
	}, nil
}

// SimulateDiscount returns a synthetic result for test sessions. Nothing
// leaves the process.
func (a *StripeApplier) SimulateDiscount(percentage int) *ActionResult {
	return &ActionResult{
		OriginalMrr: a.mockMrr,
		NewMrr:      a.mockMrr * (1 - float64(percentage)/100),
		Simulated:   true,
	}
}

func (a *StripeApplier) SimulatePause() *ActionResult {
	return &ActionResult{
		OriginalMrr: a.mockMrr,
		NewMrr:      0,
		Simulated:   true,
	}
}

func (a *StripeApplier) retrieve(ctx context.Context, subscriptionRef string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}
	subscription, err := sub.Get(subscriptionRef, params)
	if err != nil {
		a.logger.Error("Payment", "Subscription retrieval failed", map[string]interface{}{
			"subscription_ref": subscriptionRef,
			"error":            err.Error(),
		})
		return nil, serverutils.NewUpstreamError("payment processor subscription lookup failed", err)
	}
	return subscription, nil
}
