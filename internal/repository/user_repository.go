package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dailybot/internal/model"
)

// UserRepository handles persistence of user profiles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreateByTelegramID loads a user profile, creating it on first
// contact and refreshing the Telegram metadata and last-seen mark.
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	now := time.Now().UTC()

	err := db.Where("telegram_user_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"telegram_first_name": firstName,
			"telegram_last_name":  lastName,
			"telegram_username":   username,
			"last_seen":           now,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramUserID:    telegramID,
			TelegramFirstName: firstName,
			TelegramLastName:  lastName,
			TelegramUsername:  username,
			Language:          "ru",
			NotifyTime:        "09:00",
			RegistrationStep:  model.StepNew,
			FirstSeen:         now,
			LastSeen:          now,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_user_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SaveWithAction persists a profile update together with its action
// event in one transaction. Either both rows commit or neither does.
func (r *UserRepository) SaveWithAction(ctx context.Context, user *model.User, action *model.UserAction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		if action != nil {
			action.UserID = user.ID
			if err := tx.Create(action).Error; err != nil {
				return fmt.Errorf("append action: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}
