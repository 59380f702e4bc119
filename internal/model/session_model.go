package model

import (
	"time"

	"github.com/google/uuid"
)

type CancelSession struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId          uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerRef        string    `gorm:"type:varchar(255)"`
	SubscriptionRef    string    `gorm:"type:varchar(255)"`
	SessionToken       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status             string    `gorm:"type:varchar(30);not null;default:'started'"`
	ExitReason         string    `gorm:"type:varchar(100)"`
	CustomFeedback     string    `gorm:"type:text"`
	OfferTypePresented string    `gorm:"type:varchar(20)"`
	OfferAccepted      *bool
	StartedAt          time.Time `gorm:"not null"`
	CompletedAt        *time.Time
}

func (CancelSession) TableName() string {
	return "cancel_sessions"
}

type SavedCustomerRecord struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId uuid.UUID `gorm:"type:uuid;not null;index:idx_saves_profile_created"`
	// One save per session: upserts key on this column.
	CancelSessionId uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	SaveType        string    `gorm:"type:varchar(20);not null"`
	OriginalMrr     float64   `gorm:"type:decimal(10,2);not null"`
	NewMrr          float64   `gorm:"type:decimal(10,2);not null"`
	DiscountPct     *int
	PauseMonths     *int
	PaymentActionId *string   `gorm:"type:varchar(255)"`
	FeePerMonth     float64   `gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index:idx_saves_profile_created"`
}

func (SavedCustomerRecord) TableName() string {
	return "saved_customer_records"
}
