package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dailybot/internal/model"
)

// ActionRepository is the append-only event log. It exposes no update
// or delete operations.
type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Append writes one action event. The returned error must be checked:
// a failed append means the action did not happen as far as analytics
// are concerned.
func (r *ActionRepository) Append(ctx context.Context, action *model.UserAction) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// ListByUserBetween returns the user's events with created_at in
// [from, to), ordered by timestamp then insertion order.
func (r *ActionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]model.UserAction, error) {
	var actions []model.UserAction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at ASC, id ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}
