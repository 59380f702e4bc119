package entity

import (
	"testing"
)

func TestResolveOffer(t *testing.T) {
	profile := &BusinessProfile{
		DefaultOfferType: OfferTypeDiscount,
		DiscountPct:      20,
		DiscountMonths:   3,
		PauseMonths:      2,
		ReasonOverrides: map[string]ReasonOverride{
			"too_expensive": {OfferType: OfferTypeDiscount, Percentage: 25, DurationMonths: 3},
			"not_using":     {OfferType: OfferTypePause},
			"switching":     {OfferType: OfferTypeNone},
		},
	}

	tests := []struct {
		name       string
		exitReason string
		want       ResolvedOffer
	}{
		{
			name:       "override with full parameters",
			exitReason: "too_expensive",
			want:       ResolvedOffer{Type: OfferTypeDiscount, Percentage: 25, DurationMonths: 3},
		},
		{
			name:       "pause override inherits default duration",
			exitReason: "not_using",
			want:       ResolvedOffer{Type: OfferTypePause, DurationMonths: 2},
		},
		{
			name:       "none override suppresses the default",
			exitReason: "switching",
			want:       ResolvedOffer{Type: OfferTypeNone},
		},
		{
			name:       "unknown reason falls back to profile default",
			exitReason: "missing_features",
			want:       ResolvedOffer{Type: OfferTypeDiscount, Percentage: 20, DurationMonths: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := profile.ResolveOffer(tt.exitReason)
			if got != tt.want {
				t.Errorf("ResolveOffer(%q) = %+v, want %+v", tt.exitReason, got, tt.want)
			}
		})
	}
}

func TestResolveOfferNoDefault(t *testing.T) {
	profile := &BusinessProfile{DefaultOfferType: OfferTypeNone}
	got := profile.ResolveOffer("any_reason")
	if got.Type != OfferTypeNone {
		t.Errorf("expected no offer, got %+v", got)
	}

	empty := &BusinessProfile{}
	got = empty.ResolveOffer("any_reason")
	if got.Type != OfferTypeNone {
		t.Errorf("unset default should resolve to none, got %+v", got)
	}
}
