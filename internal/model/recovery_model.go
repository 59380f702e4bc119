package model

import (
	"time"

	"github.com/google/uuid"
)

type RecoveryCase struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerUserId  uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerRef  string    `gorm:"type:varchar(255);index"`
	// One case per invoice across all time: the unique index is the race
	// fallback for concurrent payment_failed deliveries.
	InvoiceRef    string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	AmountAtRisk  int64     `gorm:"not null;default:0"`
	Currency      string    `gorm:"type:varchar(3)"`
	Status        string    `gorm:"type:varchar(20);not null;default:'open';index"`
	ChurnReason   string    `gorm:"type:varchar(30);not null;default:'unknown'"`
	OpenedAt      time.Time `gorm:"not null"`
	DeadlineAt    time.Time `gorm:"not null"`
	FirstActionAt *time.Time
	ResolvedAt    *time.Time
}

func (RecoveryCase) TableName() string {
	return "recovery_cases"
}

type RecoveryAction struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecoveryCaseId uuid.UUID `gorm:"type:uuid;not null;index"`
	ActionType     string    `gorm:"type:varchar(30);not null"`
	Note           string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (RecoveryAction) TableName() string {
	return "recovery_actions"
}
