package service

import (
	"context"
	"time"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// MonthlyFeeSummer is the slice of the save repository the calculator
// needs: the fees a business has already accrued this calendar month.
type MonthlyFeeSummer interface {
	SumFeesSince(ctx context.Context, profileId uuid.UUID, since time.Time) (float64, error)
}

// FeePolicy is the pricing fallback applied when a profile carries no
// fee configuration of its own.
type FeePolicy struct {
	Rate       float64
	PerSaveCap float64
	MonthlyCap float64
}

// FeeCalculator prices a save: a share of the monthly saved revenue,
// capped per save and per business per calendar month.
type FeeCalculator struct {
	defaults FeePolicy
	logger   logger.ILogger
	now      func() time.Time
}

func NewFeeCalculator(defaults FeePolicy, log logger.ILogger) *FeeCalculator {
	return &FeeCalculator{
		defaults: defaults,
		logger:   log,
		now:      time.Now,
	}
}

// Calculate returns the monthly service fee for one save. A failure
// reading the accrued total fails open: the business is billed as if
// nothing had accrued, trading precision for never blocking a save.
func (f *FeeCalculator) Calculate(ctx context.Context, summer MonthlyFeeSummer, profile *entity.BusinessProfile, originalMrr, newMrr float64) float64 {
	savedRevenue := originalMrr - newMrr
	if savedRevenue <= 0 {
		return 0
	}

	policy := f.policyFor(profile)
	rawFee := savedRevenue * policy.Rate

	accrued, err := summer.SumFeesSince(ctx, profile.Id, startOfMonth(f.now()))
	if err != nil {
		f.logger.Error("Fees", "Monthly fee sum failed, failing open", map[string]interface{}{
			"profile_id": profile.Id,
			"error":      err.Error(),
		})
		accrued = 0
	}

	monthlyRemaining := policy.MonthlyCap - accrued
	if monthlyRemaining < 0 {
		monthlyRemaining = 0
	}

	fee := rawFee
	if policy.PerSaveCap < fee {
		fee = policy.PerSaveCap
	}
	if monthlyRemaining < fee {
		fee = monthlyRemaining
	}
	return fee
}

// policyFor layers the profile's own fee settings over the defaults.
func (f *FeeCalculator) policyFor(profile *entity.BusinessProfile) FeePolicy {
	policy := f.defaults
	if profile.ServiceFeeRate > 0 {
		policy.Rate = profile.ServiceFeeRate
	}
	if profile.PerSaveFeeCap > 0 {
		policy.PerSaveCap = profile.PerSaveFeeCap
	}
	if profile.MonthlyFeeCap > 0 {
		policy.MonthlyCap = profile.MonthlyFeeCap
	}
	return policy
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
