package discordaccess

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
)

// ErrNotFound is returned when no entitlement exists for the lookup key.
var ErrNotFound = errors.New("discord access not found")

// ErrAlreadyBound is returned when a bind targets an email whose entitlement
// is already linked to a different Discord account.
var ErrAlreadyBound = errors.New("discord access bound to another account")

// Grant carries a new or refreshed entitlement.
type Grant struct {
	Email           string
	DiscordUserID   string
	StripeSessionID *string
	ExpiresAt       time.Time
}

// Repository is the storage contract for the access registry.
type Repository interface {
	// Upsert inserts or refreshes the entitlement for the grant's email. A
	// pending discord user id never overwrites an existing real binding.
	Upsert(ctx context.Context, grant Grant) (*models.DiscordAccess, error)
	FindByEmail(ctx context.Context, email string) (*models.DiscordAccess, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.DiscordAccess, error)
	// Bind flips a pending entitlement to the given Discord user id. Binding
	// the same id again is a no-op success; a different id is rejected.
	Bind(ctx context.Context, email, discordUserID string) (*models.DiscordAccess, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// GormRepository persists entitlements through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a registry repo bound to the provided GORM DB.
func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) Upsert(ctx context.Context, grant Grant) (*models.DiscordAccess, error) {
	access := &models.DiscordAccess{
		ID:              uuid.New(),
		Email:           grant.Email,
		DiscordUserID:   grant.DiscordUserID,
		StripeSessionID: grant.StripeSessionID,
		ExpiresAt:       grant.ExpiresAt,
	}
	if access.DiscordUserID == "" {
		access.DiscordUserID = models.DiscordUserPending
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{
				"expires_at":        grant.ExpiresAt,
				"stripe_session_id": grant.StripeSessionID,
				"updated_at":        time.Now().UTC(),
				"discord_user_id": gorm.Expr(
					"CASE WHEN excluded.discord_user_id = 'pending' THEN discord_access.discord_user_id ELSE excluded.discord_user_id END",
				),
			}),
		}).
		Create(access).Error
	if err != nil {
		return nil, err
	}
	return r.FindByEmail(ctx, grant.Email)
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*models.DiscordAccess, error) {
	var access models.DiscordAccess
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&access).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &access, nil
}

func (r *GormRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.DiscordAccess, error) {
	var access models.DiscordAccess
	if err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&access).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &access, nil
}

func (r *GormRepository) Bind(ctx context.Context, email, discordUserID string) (*models.DiscordAccess, error) {
	// The conditional update keeps the one-time binding linearizable: only a
	// pending entitlement or the already-bound id can pass the WHERE clause.
	res := r.db.WithContext(ctx).
		Model(&models.DiscordAccess{}).
		Where("email = ? AND discord_user_id IN (?, ?)", email, models.DiscordUserPending, discordUserID).
		Updates(map[string]any{"discord_user_id": discordUserID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByEmail(ctx, email); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyBound
	}
	return r.FindByEmail(ctx, email)
}

func (r *GormRepository) DeleteByEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Delete(&models.DiscordAccess{}, "email = ?", email)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
