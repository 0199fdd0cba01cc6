package discordaccess

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
)

// MemoryRepository keeps entitlements in process memory. The mutex gives the
// bind the same linearizability the SQL implementation gets from its
// conditional UPDATE.
type MemoryRepository struct {
	mu      sync.Mutex
	byEmail map[string]models.DiscordAccess
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: map[string]models.DiscordAccess{}}
}

func (r *MemoryRepository) Upsert(ctx context.Context, grant Grant) (*models.DiscordAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	userID := grant.DiscordUserID
	if userID == "" {
		userID = models.DiscordUserPending
	}

	if existing, ok := r.byEmail[grant.Email]; ok {
		existing.ExpiresAt = grant.ExpiresAt
		existing.StripeSessionID = grant.StripeSessionID
		existing.UpdatedAt = now
		if userID != models.DiscordUserPending {
			existing.DiscordUserID = userID
		}
		r.byEmail[grant.Email] = existing
		out := existing
		return &out, nil
	}

	access := models.DiscordAccess{
		ID:              uuid.New(),
		Email:           grant.Email,
		DiscordUserID:   userID,
		StripeSessionID: grant.StripeSessionID,
		ExpiresAt:       grant.ExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.byEmail[grant.Email] = access
	out := access
	return &out, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.DiscordAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	access, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := access
	return &out, nil
}

func (r *MemoryRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.DiscordAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, access := range r.byEmail {
		if access.StripeSessionID != nil && *access.StripeSessionID == sessionID {
			out := access
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Bind(ctx context.Context, email, discordUserID string) (*models.DiscordAccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	access, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	if access.DiscordUserID != models.DiscordUserPending && access.DiscordUserID != discordUserID {
		return nil, ErrAlreadyBound
	}
	access.DiscordUserID = discordUserID
	access.UpdatedAt = time.Now().UTC()
	r.byEmail[email] = access
	out := access
	return &out, nil
}

func (r *MemoryRepository) DeleteByEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; !ok {
		return ErrNotFound
	}
	delete(r.byEmail, email)
	return nil
}
