package accesscodes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

func setupCodesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS access_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  product_type TEXT NOT NULL,
  email TEXT,
  order_id TEXT,
  stripe_session_id TEXT,
  is_used BOOLEAN NOT NULL DEFAULT FALSE,
  used_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the shared in-memory DB consistent under
	// concurrent claims
	sqlDB.SetMaxOpenConns(1)
	return db
}

func codeRepositoriesUnderTest(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"gorm":   NewGormRepository(setupCodesTestDB(t)),
		"memory": NewMemoryRepository(),
	}
}

func seedTestCodes(t *testing.T, repo Repository, family enums.ProductFamily, codes ...string) {
	t.Helper()
	rows := make([]models.AccessCode, 0, len(codes))
	base := time.Now().UTC()
	for i, code := range codes {
		created := base.Add(time.Duration(i) * time.Second)
		rows = append(rows, models.AccessCode{Code: code, ProductType: family, CreatedAt: created})
	}
	inserted, err := repo.Insert(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, int64(len(codes)), inserted)
}

func TestClaimUnusedFlipsExactlyOnce(t *testing.T) {
	for name, repo := range codeRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedTestCodes(t, repo, enums.ProductFamilyObywatel, "MAMBA-001")

			claimed, err := repo.ClaimUnused(ctx, enums.ProductFamilyObywatel, Claim{
				Email: "first@example.com",
				At:    time.Now().UTC(),
			})
			require.NoError(t, err)
			assert.Equal(t, "MAMBA-001", claimed.Code)
			assert.True(t, claimed.IsUsed)
			require.NotNil(t, claimed.Email)
			assert.Equal(t, "first@example.com", *claimed.Email)
			assert.NotNil(t, claimed.UsedAt)

			_, err = repo.ClaimUnused(ctx, enums.ProductFamilyObywatel, Claim{
				Email: "second@example.com",
				At:    time.Now().UTC(),
			})
			assert.ErrorIs(t, err, ErrPoolExhausted)
		})
	}
}

func TestClaimUnusedRespectsPartition(t *testing.T) {
	for name, repo := range codeRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedTestCodes(t, repo, enums.ProductFamilyReceipts, "RCPT-001")

			_, err := repo.ClaimUnused(ctx, enums.ProductFamilyObywatel, Claim{
				Email: "x@example.com",
				At:    time.Now().UTC(),
			})
			assert.ErrorIs(t, err, ErrPoolExhausted)

			count, err := repo.CountAvailable(ctx, enums.ProductFamilyReceipts)
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestConcurrentClaimsNeverDoubleAllocate(t *testing.T) {
	for name, repo := range codeRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedTestCodes(t, repo, enums.ProductFamilyObywatel, "C-1", "C-2")

			const claimers = 3
			results := make(chan string, claimers)
			failures := make(chan error, claimers)

			var wg sync.WaitGroup
			for i := 0; i < claimers; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					code, err := repo.ClaimUnused(ctx, enums.ProductFamilyObywatel, Claim{
						Email: "c@example.com",
						At:    time.Now().UTC(),
					})
					if err != nil {
						failures <- err
						return
					}
					results <- code.Code
				}(i)
			}
			wg.Wait()
			close(results)
			close(failures)

			seen := map[string]bool{}
			for code := range results {
				assert.False(t, seen[code], "code %s allocated twice", code)
				seen[code] = true
			}
			assert.Len(t, seen, 2)

			var exhausted int
			for err := range failures {
				assert.ErrorIs(t, err, ErrPoolExhausted)
				exhausted++
			}
			assert.Equal(t, 1, exhausted)
		})
	}
}

func TestFindByStripeSessionID(t *testing.T) {
	for name, repo := range codeRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedTestCodes(t, repo, enums.ProductFamilyObywatel, "S-1")

			session := "cs_test_sess"
			claimed, err := repo.ClaimUnused(ctx, enums.ProductFamilyObywatel, Claim{
				Email:           "s@example.com",
				StripeSessionID: &session,
				At:              time.Now().UTC(),
			})
			require.NoError(t, err)

			found, err := repo.FindByStripeSessionID(ctx, session)
			require.NoError(t, err)
			assert.Equal(t, claimed.Code, found.Code)

			_, err = repo.FindByStripeSessionID(ctx, "cs_test_other")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestInsertSkipsExistingCodes(t *testing.T) {
	for name, repo := range codeRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			inserted, err := repo.Insert(ctx, []models.AccessCode{
				{Code: "DUP-1", ProductType: enums.ProductFamilyObywatel},
				{Code: "DUP-2", ProductType: enums.ProductFamilyObywatel},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), inserted)

			inserted, err = repo.Insert(ctx, []models.AccessCode{
				{Code: "DUP-1", ProductType: enums.ProductFamilyObywatel},
				{Code: "DUP-3", ProductType: enums.ProductFamilyObywatel},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), inserted)
		})
	}
}
