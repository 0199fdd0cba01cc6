package forms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
)

// ErrNotFound is returned when no form exists for the lookup key.
var ErrNotFound = errors.New("form not found")

// Repository is the storage contract for generator forms.
type Repository interface {
	Create(ctx context.Context, form *models.ObywatelForm) (*models.ObywatelForm, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ObywatelForm, error)
	ListByEmail(ctx context.Context, email string) ([]models.ObywatelForm, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// GormRepository persists forms through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a forms repo bound to the provided GORM DB.
func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) Create(ctx context.Context, form *models.ObywatelForm) (*models.ObywatelForm, error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(form).Error; err != nil {
		return nil, err
	}
	return form, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ObywatelForm, error) {
	var form models.ObywatelForm
	if err := r.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

func (r *GormRepository) ListByEmail(ctx context.Context, email string) ([]models.ObywatelForm, error) {
	var forms []models.ObywatelForm
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *GormRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.ObywatelForm{}).
		Where("id = ?", id).
		UpdateColumn("submitted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
