package forms

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
)

// MemoryRepository keeps forms in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	forms map[uuid.UUID]models.ObywatelForm
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{forms: map[uuid.UUID]models.ObywatelForm{}}
}

func (r *MemoryRepository) Create(ctx context.Context, form *models.ObywatelForm) (*models.ObywatelForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *form
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now().UTC()
	r.forms[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ObywatelForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	form, ok := r.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &form, nil
}

func (r *MemoryRepository) ListByEmail(ctx context.Context, email string) ([]models.ObywatelForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ObywatelForm
	for _, form := range r.forms {
		if form.Email == email {
			out = append(out, form)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.forms[id]
	if !ok {
		return ErrNotFound
	}
	form.SubmittedAt = &at
	r.forms[id] = form
	return nil
}
