package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func repositoriesUnderTest(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"gorm":   NewGormRepository(setupUsersTestDB(t)),
		"memory": NewMemoryRepository(),
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := repo.Create(ctx, "kuba@example.com", "hashed")
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, created.ID)

			found, err := repo.FindByEmail(ctx, "kuba@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, "hashed", found.PasswordHash)

			_, err = repo.FindByEmail(ctx, "missing@example.com")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Create(ctx, "dup@example.com", "h1")
			require.NoError(t, err)

			_, err = repo.Create(ctx, "dup@example.com", "h2")
			assert.ErrorIs(t, err, ErrEmailTaken)
		})
	}
}

func TestRepositoryUpdatePassword(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := repo.Create(ctx, "pw@example.com", "old")
			require.NoError(t, err)

			require.NoError(t, repo.UpdatePassword(ctx, created.ID, "new"))

			found, err := repo.FindByEmail(ctx, "pw@example.com")
			require.NoError(t, err)
			assert.Equal(t, "new", found.PasswordHash)

			assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "x"), ErrNotFound)
		})
	}
}

func TestRepositoryDelete(t *testing.T) {
	for name, repo := range repositoriesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := repo.Create(ctx, "gone@example.com", "h")
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, created.ID))

			_, err = repo.FindByEmail(ctx, "gone@example.com")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
		})
	}
}
