package implementation

import (
	"context"
	"encoding/json"

	"churnguard-be/internal/entity"
	"churnguard-be/internal/model"
	"churnguard-be/internal/repository/contract"
	"churnguard-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type profileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

func (r *profileRepositoryImpl) Create(ctx context.Context, profile *entity.BusinessProfile) error {
	m, err := r.mapToModel(profile)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *profileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BusinessProfile, error) {
	var m model.BusinessProfile
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m), nil
}

func (r *profileRepositoryImpl) FindByOwner(ctx context.Context, ownerUserId uuid.UUID) (*entity.BusinessProfile, error) {
	var m model.BusinessProfile
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserId).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapToEntity(&m), nil
}

func (r *profileRepositoryImpl) Update(ctx context.Context, profile *entity.BusinessProfile) error {
	m, err := r.mapToModel(profile)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.BusinessProfile{}).
		Where("id = ?", profile.Id).
		Updates(m).Error
}

func (r *profileRepositoryImpl) mapToModel(p *entity.BusinessProfile) (*model.BusinessProfile, error) {
	overrides, err := json.Marshal(p.ReasonOverrides)
	if err != nil {
		return nil, err
	}
	surveyOptions, err := json.Marshal(p.SurveyOptions)
	if err != nil {
		return nil, err
	}
	branding, err := json.Marshal(p.Branding)
	if err != nil {
		return nil, err
	}
	widgetSettings, err := json.Marshal(p.WidgetSettings)
	if err != nil {
		return nil, err
	}

	return &model.BusinessProfile{
		Id:               p.Id,
		OwnerUserId:      p.OwnerUserId,
		CompanyName:      p.CompanyName,
		Currency:         p.Currency,
		DefaultOfferType: string(p.DefaultOfferType),
		DiscountPct:      p.DiscountPct,
		DiscountMonths:   p.DiscountMonths,
		PauseMonths:      p.PauseMonths,
		ReasonOverrides:  datatypes.JSON(overrides),
		ServiceFeeRate:   p.ServiceFeeRate,
		PerSaveFeeCap:    p.PerSaveFeeCap,
		MonthlyFeeCap:    p.MonthlyFeeCap,
		SurveyOptions:    datatypes.JSON(surveyOptions),
		Branding:         datatypes.JSON(branding),
		WidgetSettings:   datatypes.JSON(widgetSettings),
		IsActive:         p.IsActive,
	}, nil
}

func (r *profileRepositoryImpl) mapToEntity(m *model.BusinessProfile) *entity.BusinessProfile {
	p := &entity.BusinessProfile{
		Id:               m.Id,
		OwnerUserId:      m.OwnerUserId,
		CompanyName:      m.CompanyName,
		Currency:         m.Currency,
		DefaultOfferType: entity.OfferType(m.DefaultOfferType),
		DiscountPct:      m.DiscountPct,
		DiscountMonths:   m.DiscountMonths,
		PauseMonths:      m.PauseMonths,
		ServiceFeeRate:   m.ServiceFeeRate,
		PerSaveFeeCap:    m.PerSaveFeeCap,
		MonthlyFeeCap:    m.MonthlyFeeCap,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}

	// Malformed JSON columns degrade to empty config rather than failing
	// the read; offer resolution then falls back to profile defaults.
	_ = json.Unmarshal(m.ReasonOverrides, &p.ReasonOverrides)
	_ = json.Unmarshal(m.SurveyOptions, &p.SurveyOptions)
	_ = json.Unmarshal(m.Branding, &p.Branding)
	_ = json.Unmarshal(m.WidgetSettings, &p.WidgetSettings)

	return p
}
