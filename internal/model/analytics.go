package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserAnalytics is a derived daily activity row per (user, date).
// It is always reproducible by replaying user_actions for that day and
// is never treated as a source of truth.
type UserAnalytics struct {
	ID     string    `gorm:"primaryKey;size:36"`
	UserID string    `gorm:"size:36;index:idx_user_analytics_day,unique"`
	Date   time.Time `gorm:"index:idx_user_analytics_day,unique"` // midnight UTC

	TotalMessages int
	TotalCommands int
	AstroRequests int
	MoonRequests  int

	FirstActivityAt    *time.Time
	LastActivityAt     *time.Time
	SessionDurationMin int

	CommandsUsed    map[string]int `gorm:"serializer:json"`
	EngagementScore float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserAnalytics) TableName() string { return "user_analytics" }

func (a *UserAnalytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
