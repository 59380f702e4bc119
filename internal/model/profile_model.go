package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BusinessProfile struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerUserId uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyName string    `gorm:"type:varchar(255);not null"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'USD'"`

	DefaultOfferType string `gorm:"type:varchar(20);default:'discount'"`
	DiscountPct      int    `gorm:"default:20"`
	DiscountMonths   int    `gorm:"default:3"`
	PauseMonths      int    `gorm:"default:1"`
	ReasonOverrides  datatypes.JSON

	ServiceFeeRate float64 `gorm:"type:decimal(5,4);default:0.20"`
	PerSaveFeeCap  float64 `gorm:"type:decimal(10,2);default:500"`
	MonthlyFeeCap  float64 `gorm:"type:decimal(10,2);default:500"`

	SurveyOptions  datatypes.JSON
	Branding       datatypes.JSON
	WidgetSettings datatypes.JSON

	IsActive  bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (BusinessProfile) TableName() string {
	return "business_profiles"
}
