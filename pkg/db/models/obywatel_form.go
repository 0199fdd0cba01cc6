package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ObywatelForm stores the opaque generator payload a customer fills in after
// redeeming a code. The form data is never interpreted server-side.
type ObywatelForm struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string          `gorm:"type:text;not null;index"`
	OrderID     string          `gorm:"column:order_id;not null"`
	FormData    json.RawMessage `gorm:"column:form_data;type:jsonb;not null"`
	AccessLink  *string         `gorm:"column:access_link"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	SubmittedAt *time.Time      `gorm:"column:submitted_at"`
}

func (ObywatelForm) TableName() string {
	return "obywatel_forms"
}
