package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChurnRiskEvent struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index:idx_risk_events_user_time"`
	EventType  string    `gorm:"type:varchar(50);not null"`
	Severity   int       `gorm:"not null;default:0"`
	OccurredAt time.Time `gorm:"not null;index:idx_risk_events_user_time"`
	Metadata   datatypes.JSON
}

func (ChurnRiskEvent) TableName() string {
	return "churn_risk_events"
}

type ChurnRiskSnapshot struct {
	UserId     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Score      int       `gorm:"not null;default:0"`
	TopReasons datatypes.JSON
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ChurnRiskSnapshot) TableName() string {
	return "churn_risk_snapshots"
}
