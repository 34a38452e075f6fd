package model

import "time"

// ActionKind classifies a single user action. The set is closed; the
// analytics layer switches over it exhaustively.
type ActionKind string

const (
	ActionRegistrationStarted   ActionKind = "registration_started"
	ActionRegistrationCompleted ActionKind = "registration_completed"
	ActionAstroRequest          ActionKind = "astro_request"
	ActionMoonRequest           ActionKind = "moon_request"
	ActionProfileView           ActionKind = "profile_view"
	ActionHelpRequest           ActionKind = "help_request"
	ActionMessageSent           ActionKind = "message_sent"
	ActionLocationShared        ActionKind = "location_shared"
	ActionCommandUsed           ActionKind = "command_used"
)

// IsCommand reports whether the kind counts as a command for analytics.
func (k ActionKind) IsCommand() bool {
	switch k {
	case ActionAstroRequest, ActionMoonRequest, ActionProfileView,
		ActionHelpRequest, ActionCommandUsed:
		return true
	}
	return false
}

// UserAction is one immutable fact about a user action. Rows are only
// ever appended, never updated or deleted. The autoincrement ID breaks
// timestamp ties in insertion order.
type UserAction struct {
	ID          uint           `gorm:"primaryKey"`
	UserID      string         `gorm:"index;size:36"`
	Kind        ActionKind     `gorm:"column:action_type;size:50;index"`
	Command     string         `gorm:"size:100"`
	MessageText string         `gorm:"type:text"`
	Context     map[string]any `gorm:"serializer:json"`
	CreatedAt   time.Time      `gorm:"index"`
}

func (UserAction) TableName() string { return "user_actions" }
