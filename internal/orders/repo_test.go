package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  stripe_session_id TEXT UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func orderRepositoriesUnderTest(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"gorm":   NewGormRepository(setupOrdersTestDB(t)),
		"memory": NewMemoryRepository(),
	}
}

func TestOrderRepositoryCreateAndLookups(t *testing.T) {
	for name, repo := range orderRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			session := "cs_test_abc"

			created, err := repo.Create(ctx, &models.Order{
				Email:           "buyer@example.com",
				ProductID:       "obywatel-basic",
				ProductName:     "Mamba Obywatel",
				Price:           "20 PLN",
				StripeSessionID: &session,
			})
			require.NoError(t, err)
			assert.Equal(t, enums.OrderStatusPending, created.Status)

			byID, err := repo.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "buyer@example.com", byID.Email)

			bySession, err := repo.FindByStripeSessionID(ctx, session)
			require.NoError(t, err)
			assert.Equal(t, created.ID, bySession.ID)

			_, err = repo.FindByStripeSessionID(ctx, "cs_test_missing")
			assert.ErrorIs(t, err, ErrNotFound)

			list, err := repo.ListByEmail(ctx, "buyer@example.com")
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestOrderRepositorySessionIDIsUnique(t *testing.T) {
	for name, repo := range orderRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			session := "cs_test_dup"

			_, err := repo.Create(ctx, &models.Order{
				Email:           "buyer@example.com",
				ProductID:       "p",
				ProductName:     "n",
				Price:           "1",
				StripeSessionID: &session,
			})
			require.NoError(t, err)

			_, err = repo.Create(ctx, &models.Order{
				Email:           "other@example.com",
				ProductID:       "p",
				ProductName:     "n",
				Price:           "1",
				StripeSessionID: &session,
			})
			assert.ErrorIs(t, err, ErrSessionTaken)

			// sessionless orders may repeat
			for i := 0; i < 2; i++ {
				_, err = repo.Create(ctx, &models.Order{
					Email:       "buyer@example.com",
					ProductID:   "p",
					ProductName: "n",
					Price:       "1",
				})
				require.NoError(t, err)
			}
		})
	}
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	for name, repo := range orderRepositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := repo.Create(ctx, &models.Order{
				Email:       "buyer@example.com",
				ProductID:   "receipts-monthly",
				ProductName: "Mamba Receipts",
				Price:       "20 PLN",
			})
			require.NoError(t, err)

			require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.OrderStatusPaid))

			updated, err := repo.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, enums.OrderStatusPaid, updated.Status)

			assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), enums.OrderStatusPaid), ErrNotFound)
		})
	}
}
