package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mambaservices/storefront-backend/pkg/db"
	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// ErrNotFound is returned when no order exists for the lookup key.
var ErrNotFound = errors.New("order not found")

// ErrSessionTaken is returned when a create collides with an existing
// stripe session id.
var ErrSessionTaken = errors.New("order already exists for this checkout session")

// Repository is the storage contract for the order ledger.
type Repository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

// GormRepository persists orders through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs an orders repo bound to the provided GORM DB.
func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_orders_stripe_session_id") {
			return nil, ErrSessionTaken
		}
		return nil, err
	}
	return order, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
