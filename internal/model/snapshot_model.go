package model

import (
	"time"

	"github.com/google/uuid"
)

type CustomerSnapshot struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerRef string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email       string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (CustomerSnapshot) TableName() string {
	return "customer_snapshots"
}

type SubscriptionSnapshot struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;index"`
	SubscriptionRef   string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CustomerRef       string    `gorm:"type:varchar(255);index"`
	Status            string    `gorm:"type:varchar(50);not null"`
	CancelAtPeriodEnd bool      `gorm:"default:false"`
	TrialEnd          *time.Time
	CurrentPeriodEnd  *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (SubscriptionSnapshot) TableName() string {
	return "subscription_snapshots"
}

type InvoiceSnapshot struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceRef      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	SubscriptionRef string    `gorm:"type:varchar(255);index"`
	CustomerRef     string    `gorm:"type:varchar(255);index"`
	AmountDue       int64     `gorm:"not null;default:0"`
	Currency        string    `gorm:"type:varchar(3)"`
	Status          string    `gorm:"type:varchar(50)"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (InvoiceSnapshot) TableName() string {
	return "invoice_snapshots"
}
