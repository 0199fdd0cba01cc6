package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a storefront account. Passwords are stored as bcrypt hashes
// only; the plaintext never reaches the persistence layer.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name regardless of GORM pluralization settings.
func (User) TableName() string {
	return "users"
}
