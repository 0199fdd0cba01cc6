package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// MemoryRepository keeps the ledger in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: map[uuid.UUID]models.Order{}}
}

func (r *MemoryRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *order
	if stored.StripeSessionID != nil {
		for _, existing := range r.orders {
			if existing.StripeSessionID != nil && *existing.StripeSessionID == *stored.StripeSessionID {
				return nil, ErrSessionTaken
			}
		}
	}
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Status == "" {
		stored.Status = enums.OrderStatusPending
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.orders[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (r *MemoryRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Order
	for _, order := range r.orders {
		if order.Email == email {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.StripeSessionID != nil && *order.StripeSessionID == sessionID {
			out := order
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}
