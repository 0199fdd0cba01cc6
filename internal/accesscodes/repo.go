package accesscodes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// ErrPoolExhausted is returned when no unused code remains for the product
// type. This is an operational alert: the pool must be replenished by hand.
var ErrPoolExhausted = errors.New("access code pool exhausted")

// ErrNotFound is returned when no code exists for the lookup key.
var ErrNotFound = errors.New("access code not found")

// Claim carries the attribution recorded when a code flips to used.
type Claim struct {
	Email           string
	OrderID         *string
	StripeSessionID *string
	At              time.Time
}

// Repository is the storage contract for the redemption pool.
type Repository interface {
	// ClaimUnused atomically selects one unused code of the product type,
	// marks it used, and returns it. Select and flip happen in a single
	// storage operation so two callers can never receive the same code.
	ClaimUnused(ctx context.Context, productType enums.ProductFamily, claim Claim) (*models.AccessCode, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.AccessCode, error)
	CountAvailable(ctx context.Context, productType enums.ProductFamily) (int64, error)
	Insert(ctx context.Context, codes []models.AccessCode) (int64, error)
}

// GormRepository persists the pool through GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a pool repo bound to the provided GORM DB.
func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

func (r *GormRepository) ClaimUnused(ctx context.Context, productType enums.ProductFamily, claim Claim) (*models.AccessCode, error) {
	// The subselect and the flip execute as one statement. SKIP LOCKED keeps
	// concurrent claimers from serializing on the same candidate row.
	lockClause := ""
	if r.db.Dialector.Name() == "postgres" {
		lockClause = " FOR UPDATE SKIP LOCKED"
	}

	query := `
UPDATE access_codes
SET is_used = TRUE, email = ?, order_id = ?, stripe_session_id = ?, used_at = ?
WHERE id = (
    SELECT id FROM access_codes
    WHERE product_type = ? AND is_used = FALSE
    ORDER BY created_at
    LIMIT 1` + lockClause + `
) AND is_used = FALSE
RETURNING id, code, product_type, email, order_id, stripe_session_id, is_used, used_at, created_at`

	var code models.AccessCode
	res := r.db.WithContext(ctx).Raw(query,
		claim.Email, claim.OrderID, claim.StripeSessionID, claim.At,
		productType,
	).Scan(&code)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPoolExhausted
	}
	return &code, nil
}

func (r *GormRepository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.AccessCode, error) {
	var code models.AccessCode
	if err := r.db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *GormRepository) CountAvailable(ctx context.Context, productType enums.ProductFamily) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccessCode{}).
		Where("product_type = ? AND is_used = FALSE", productType).
		Count(&count).Error
	return count, err
}

// Insert seeds codes into the pool, skipping any code value already present.
// Returns the number of rows actually inserted.
func (r *GormRepository) Insert(ctx context.Context, codes []models.AccessCode) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	for i := range codes {
		if codes[i].ID == uuid.Nil {
			codes[i].ID = uuid.New()
		}
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		CreateInBatches(codes, 50)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
