package accesscodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambaservices/storefront-backend/pkg/enums"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
)

const testGeneratorLink = "https://mambagen.up.railway.app/gen.html"

func newTestCodesService(t *testing.T) (Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc, err := NewService(ServiceParams{Repo: repo, GeneratorLink: testGeneratorLink})
	require.NoError(t, err)
	return svc, repo
}

func TestClaimReturnsCodeAndLink(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCodesService(t)
	seedTestCodes(t, repo, enums.ProductFamilyObywatel, "OBY-1")

	resp, err := svc.Claim(ctx, ClaimRequest{Email: "User@Example.com", ProductID: "obywatel-basic"})
	require.NoError(t, err)
	assert.Equal(t, "OBY-1", resp.Code)
	assert.Equal(t, testGeneratorLink, resp.GeneratorLink)

	count, err := svc.CountAvailable(ctx, enums.ProductFamilyObywatel)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestClaimExhaustedPoolIsNotFound(t *testing.T) {
	svc, _ := newTestCodesService(t)

	_, err := svc.Claim(context.Background(), ClaimRequest{Email: "u@example.com", ProductID: "obywatel-basic"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClaimRoutesByProductID(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCodesService(t)
	seedTestCodes(t, repo, enums.ProductFamilyReceipts, "RCPT-1")

	resp, err := svc.Claim(ctx, ClaimRequest{Email: "u@example.com", ProductID: "receipts-monthly"})
	require.NoError(t, err)
	assert.Equal(t, "RCPT-1", resp.Code)
}

func TestClaimForSessionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestCodesService(t)
	seedTestCodes(t, repo, enums.ProductFamilyObywatel, "A-1", "A-2")

	first, err := svc.ClaimForSession(ctx, enums.ProductFamilyObywatel, "a@example.com", "cs_1", nil)
	require.NoError(t, err)

	again, err := svc.ClaimForSession(ctx, enums.ProductFamilyObywatel, "a@example.com", "cs_1", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Code, again.Code)

	count, err := svc.CountAvailable(ctx, enums.ProductFamilyObywatel)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSeedPartitionsPool(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCodesService(t)

	codes := []string{"c1", "c2", "c3", "c4", "c5"}
	inserted, err := svc.Seed(ctx, codes, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), inserted)

	obywatel, err := svc.CountAvailable(ctx, enums.ProductFamilyObywatel)
	require.NoError(t, err)
	assert.Equal(t, int64(2), obywatel)

	receipts, err := svc.CountAvailable(ctx, enums.ProductFamilyReceipts)
	require.NoError(t, err)
	assert.Equal(t, int64(3), receipts)

	// reseeding is a no-op
	inserted, err = svc.Seed(ctx, codes, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
}
