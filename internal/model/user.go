package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationStep is the user's position in the onboarding dialogue.
type RegistrationStep string

const (
	StepNew           RegistrationStep = "new"
	StepAwaitingName  RegistrationStep = "awaiting_name"
	StepAwaitingDate  RegistrationStep = "awaiting_birth_date"
	StepAwaitingTime  RegistrationStep = "awaiting_birth_time"
	StepAwaitingPlace RegistrationStep = "awaiting_birth_place"
	StepComplete      RegistrationStep = "complete"
)

// User stores a Telegram user's profile and registration progress.
type User struct {
	ID             string `gorm:"primaryKey;size:36"`
	TelegramUserID int64  `gorm:"uniqueIndex"`

	Name             string `gorm:"size:100"`
	BirthDate        *time.Time
	BirthTime        string `gorm:"size:5"` // HH:MM
	BirthTimeUnknown bool   `gorm:"default:false"`
	BirthPlace       string `gorm:"size:200"`
	Latitude         *float64
	Longitude        *float64

	NotifyTime string `gorm:"size:5;default:'09:00'"`
	Language   string `gorm:"size:5;default:'ru'"`

	TelegramUsername  string `gorm:"size:100"`
	TelegramFirstName string `gorm:"size:100"`
	TelegramLastName  string `gorm:"size:100"`

	RegistrationStep     RegistrationStep `gorm:"size:50;default:'new'"`
	RegistrationComplete bool             `gorm:"default:false"`
	RegisteredAt         *time.Time

	FirstSeen time.Time
	LastSeen  time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ResetRegistration clears collected attributes and returns the user to
// the initial step. Used by the explicit restart action only.
func (u *User) ResetRegistration() {
	u.Name = ""
	u.BirthDate = nil
	u.BirthTime = ""
	u.BirthTimeUnknown = false
	u.BirthPlace = ""
	u.Latitude = nil
	u.Longitude = nil
	u.RegistrationStep = StepNew
	u.RegistrationComplete = false
	u.RegisteredAt = nil
}
