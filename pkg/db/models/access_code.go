package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// AccessCode is one entry in the pre-seeded redemption pool. A code flips
// is_used false->true exactly once and is never reused or deleted.
type AccessCode struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string              `gorm:"type:text;not null;uniqueIndex"`
	ProductType     enums.ProductFamily `gorm:"column:product_type;type:text;not null;index"`
	Email           *string             `gorm:"type:text"`
	OrderID         *string             `gorm:"column:order_id"`
	StripeSessionID *string             `gorm:"column:stripe_session_id;index"`
	IsUsed          bool                `gorm:"column:is_used;not null;default:false"`
	UsedAt          *time.Time          `gorm:"column:used_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (AccessCode) TableName() string {
	return "access_codes"
}
