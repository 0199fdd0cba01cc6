package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// Order is the audit record for a checkout. Price is the display string shown
// at checkout, not a monetary amount. Orders are never deleted.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string            `gorm:"type:text;not null;index"`
	ProductID       string            `gorm:"column:product_id;not null"`
	ProductName     string            `gorm:"column:product_name;not null"`
	Price           string            `gorm:"type:text;not null"`
	StripeSessionID *string           `gorm:"column:stripe_session_id;uniqueIndex"`
	Status          enums.OrderStatus `gorm:"type:text;not null;default:'pending'"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
