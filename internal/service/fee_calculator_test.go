package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"churnguard-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}

func (nopLogger) Sync() error { return nil }

type stubSummer struct {
	accrued float64
	err     error
}

func (s stubSummer) SumFeesSince(_ context.Context, _ uuid.UUID, _ time.Time) (float64, error) {
	return s.accrued, s.err
}

func defaultFeePolicy() FeePolicy {
	return FeePolicy{Rate: 0.20, PerSaveCap: 500, MonthlyCap: 500}
}

func testProfile() *entity.BusinessProfile {
	return &entity.BusinessProfile{
		Id:             uuid.New(),
		ServiceFeeRate: 0.20,
		PerSaveFeeCap:  500,
		MonthlyFeeCap:  500,
	}
}

func TestFeeCalculatorCalculate(t *testing.T) {
	tests := []struct {
		name        string
		originalMrr float64
		newMrr      float64
		accrued     float64
		want        float64
	}{
		{
			name:        "pause saves full mrr",
			originalMrr: 100,
			newMrr:      0,
			accrued:     0,
			want:        20,
		},
		{
			name:        "discount saves part of mrr",
			originalMrr: 100,
			newMrr:      75,
			accrued:     0,
			want:        5,
		},
		{
			name:        "monthly cap limits the fee",
			originalMrr: 100,
			newMrr:      0,
			accrued:     490,
			want:        10,
		},
		{
			name:        "monthly cap exhausted",
			originalMrr: 100,
			newMrr:      0,
			accrued:     500,
			want:        0,
		},
		{
			name:        "accrued beyond cap never goes negative",
			originalMrr: 100,
			newMrr:      0,
			accrued:     600,
			want:        0,
		},
		{
			name:        "per save cap limits a large save",
			originalMrr: 10000,
			newMrr:      0,
			accrued:     0,
			want:        500,
		},
		{
			name:        "no saved revenue means no fee",
			originalMrr: 100,
			newMrr:      100,
			accrued:     0,
			want:        0,
		},
		{
			name:        "mrr increase means no fee",
			originalMrr: 100,
			newMrr:      120,
			accrued:     0,
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewFeeCalculator(defaultFeePolicy(), nopLogger{})
			fee := calc.Calculate(context.Background(), stubSummer{accrued: tt.accrued}, testProfile(), tt.originalMrr, tt.newMrr)
			assert.InDelta(t, tt.want, fee, 0.001)
		})
	}
}

func TestFeeCalculatorUsesDefaultsForUnconfiguredProfile(t *testing.T) {
	calc := NewFeeCalculator(defaultFeePolicy(), nopLogger{})
	bare := &entity.BusinessProfile{Id: uuid.New()}

	fee := calc.Calculate(context.Background(), stubSummer{}, bare, 100, 0)
	assert.InDelta(t, 20.0, fee, 0.001)
}

func TestFeeCalculatorFailsOpenOnSumError(t *testing.T) {
	calc := NewFeeCalculator(defaultFeePolicy(), nopLogger{})
	summer := stubSummer{err: errors.New("db down")}

	// With the ledger unreadable the accrued total is treated as zero.
	fee := calc.Calculate(context.Background(), summer, testProfile(), 100, 0)
	assert.InDelta(t, 20.0, fee, 0.001)
}
