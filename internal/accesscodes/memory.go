package accesscodes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// MemoryRepository keeps the pool in process memory. The mutex gives the claim
// the same at-most-once guarantee the SQL implementation gets from its single
// atomic UPDATE.
type MemoryRepository struct {
	mu    sync.Mutex
	codes map[uuid.UUID]models.AccessCode
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{codes: map[uuid.UUID]models.AccessCode{}}
}

func (r *MemoryRepository) ClaimUnused(ctx context.Context, productType enums.ProductFamily, claim Claim) (*models.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []models.AccessCode
	for _, code := range r.codes {
		if code.ProductType == productType && !code.IsUsed {
			candidates = append(candidates, code)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrPoolExhausted
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	code := candidates[0]
	code.IsUsed = true
	code.Email = &claim.Email
	code.OrderID = claim.OrderID
	code.StripeSessionID = claim.StripeSessionID
	usedAt := claim.At
	code.UsedAt = &usedAt
	r.codes[code.ID] = code

	out := code
	return &out, nil
}

func (r *MemoryRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, code := range r.codes {
		if code.StripeSessionID != nil && *code.StripeSessionID == sessionID {
			out := code
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CountAvailable(ctx context.Context, productType enums.ProductFamily) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, code := range r.codes {
		if code.ProductType == productType && !code.IsUsed {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, codes []models.AccessCode) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := map[string]struct{}{}
	for _, code := range r.codes {
		existing[code.Code] = struct{}{}
	}

	var inserted int64
	for _, code := range codes {
		if _, dup := existing[code.Code]; dup {
			continue
		}
		if code.ID == uuid.Nil {
			code.ID = uuid.New()
		}
		if code.CreatedAt.IsZero() {
			code.CreatedAt = time.Now().UTC()
		}
		r.codes[code.ID] = code
		existing[code.Code] = struct{}{}
		inserted++
	}
	return inserted, nil
}
