package entity

import (
	"time"

	"github.com/google/uuid"
)

type OfferType string

const (
	OfferTypeDiscount OfferType = "discount"
	OfferTypePause    OfferType = "pause"
	OfferTypeNone     OfferType = "none"
)

// ReasonOverride pins a specific offer to one cancellation reason.
// Zero-valued parameters fall back to the profile's global defaults.
type ReasonOverride struct {
	OfferType      OfferType `json:"offer_type"`
	Percentage     int       `json:"percentage,omitempty"`
	DurationMonths int       `json:"duration_months,omitempty"`
}

// BusinessProfile owns every cancel session, save record and fee ledger
// entry for one business. Offer resolution and fee caps read from here.
type BusinessProfile struct {
	Id          uuid.UUID
	OwnerUserId uuid.UUID
	CompanyName string
	Currency    string

	DefaultOfferType OfferType
	DiscountPct      int
	DiscountMonths   int
	PauseMonths      int
	ReasonOverrides  map[string]ReasonOverride

	ServiceFeeRate float64
	PerSaveFeeCap  float64
	MonthlyFeeCap  float64

	SurveyOptions  []string
	Branding       map[string]interface{}
	WidgetSettings map[string]interface{}

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolveOffer maps a stated cancellation reason to an offer: per-reason
// override first, then the profile default, else none. Missing override
// parameters inherit the profile's global discount/pause defaults.
func (p *BusinessProfile) ResolveOffer(exitReason string) ResolvedOffer {
	if ov, ok := p.ReasonOverrides[exitReason]; ok && ov.OfferType != "" {
		return p.fillDefaults(ResolvedOffer{
			Type:           ov.OfferType,
			Percentage:     ov.Percentage,
			DurationMonths: ov.DurationMonths,
		})
	}

	if p.DefaultOfferType == "" || p.DefaultOfferType == OfferTypeNone {
		return ResolvedOffer{Type: OfferTypeNone}
	}

	return p.fillDefaults(ResolvedOffer{Type: p.DefaultOfferType})
}

func (p *BusinessProfile) fillDefaults(offer ResolvedOffer) ResolvedOffer {
	switch offer.Type {
	case OfferTypeDiscount:
		if offer.Percentage == 0 {
			offer.Percentage = p.DiscountPct
		}
		if offer.DurationMonths == 0 {
			offer.DurationMonths = p.DiscountMonths
		}
	case OfferTypePause:
		offer.Percentage = 0
		if offer.DurationMonths == 0 {
			offer.DurationMonths = p.PauseMonths
		}
	}
	return offer
}

// ResolvedOffer is the concrete incentive presented on a session.
type ResolvedOffer struct {
	Type           OfferType
	Percentage     int
	DurationMonths int
}
