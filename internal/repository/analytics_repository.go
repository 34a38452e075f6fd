package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dailybot/internal/model"
)

// AnalyticsRepository stores derived daily rows. Writes are idempotent
// upserts keyed by (user_id, date), so re-materializing a day always
// converges to the same row.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Upsert(ctx context.Context, row *model.UserAnalytics) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_messages", "total_commands", "astro_requests", "moon_requests",
			"first_activity_at", "last_activity_at", "session_duration_min",
			"commands_used", "engagement_score", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("upsert analytics: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]model.UserAnalytics, error) {
	var rows []model.UserAnalytics
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	return rows, nil
}
