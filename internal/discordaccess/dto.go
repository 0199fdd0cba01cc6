package discordaccess

import "time"

// GrantRequest creates or refreshes an entitlement outside the payment flow.
type GrantRequest struct {
	Email         string `json:"email" validate:"required,email"`
	DiscordUserID string `json:"discordUserId" validate:"required"`
	OrderID       string `json:"orderId,omitempty"`
	DurationDays  int    `json:"durationDays" validate:"required,min=1,max=999"`
}

// GrantResponse confirms a grant.
type GrantResponse struct {
	AccessID  string    `json:"accessId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RevokeRequest removes an entitlement.
type RevokeRequest struct {
	Email         string `json:"email" validate:"required,email"`
	DiscordUserID string `json:"discordUserId" validate:"required"`
}

// CheckResponse is the read-side view of an entitlement. hasAccess derives
// from the expiry at read time.
type CheckResponse struct {
	HasAccess     bool       `json:"hasAccess"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
}

// LinkResult reports a completed binding back to the command surface.
type LinkResult struct {
	DiscordUserID string
	ExpiresAt     time.Time
}
