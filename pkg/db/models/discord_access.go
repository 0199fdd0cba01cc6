package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscordUserPending is the sentinel stored until the customer links their
// Discord account. Once replaced with a real id the binding is permanent.
const DiscordUserPending = "pending"

// DiscordAccess is a per-email time-limited entitlement to the platform role.
// Expiry is derived on read; revocation deletes the row.
type DiscordAccess struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string    `gorm:"type:text;not null;uniqueIndex"`
	DiscordUserID   string    `gorm:"column:discord_user_id;not null;default:'pending'"`
	StripeSessionID *string   `gorm:"column:stripe_session_id;index"`
	ExpiresAt       time.Time `gorm:"column:expires_at;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (DiscordAccess) TableName() string {
	return "discord_access"
}

// HasAccess reports whether the entitlement is live at the given instant.
func (a DiscordAccess) HasAccess(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}

// Bound reports whether the entitlement is linked to a real Discord account.
func (a DiscordAccess) Bound() bool {
	return a.DiscordUserID != "" && a.DiscordUserID != DiscordUserPending
}
