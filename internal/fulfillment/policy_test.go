package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambaservices/storefront-backend/pkg/enums"
)

func TestLinkID(t *testing.T) {
	assert.Equal(t, "28E4gA0l499Dg25eNygEg00", LinkID("28E4gA0l499Dg25eNygEg00"))
	assert.Equal(t, "28E4gA0l499Dg25eNygEg00", LinkID("https://buy.stripe.com/28E4gA0l499Dg25eNygEg00"))
	assert.Equal(t, "28E4gA0l499Dg25eNygEg00", LinkID("  https://buy.stripe.com/28E4gA0l499Dg25eNygEg00 "))
	assert.Equal(t, "", LinkID("   "))
}

func TestLookupPolicy(t *testing.T) {
	tests := []struct {
		name        string
		paymentLink string
		family      enums.ProductFamily
		tier        enums.ProductTier
		days        int
	}{
		{"obywatel premium", "6oU28s5Fo3PjaHLfRCgEg06", enums.ProductFamilyObywatel, enums.ProductTierPremium, 0},
		{"obywatel basic", "28E4gA0l499Dg25eNygEg00", enums.ProductFamilyObywatel, enums.ProductTierBasic, 0},
		{"receipts month", "9B600k7NwbhLdTXdJugEg02", enums.ProductFamilyReceipts, enums.ProductTier(""), 31},
		{"receipts lifetime", "5kQ00k8RA5Xr2bfdJugEg03", enums.ProductFamilyReceipts, enums.ProductTier(""), 999},
		{"test mode premium", "6oU28r2O8f6v3eI0C9cEw00", enums.ProductFamilyObywatel, enums.ProductTierPremium, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, ok := LookupPolicy("https://buy.stripe.com/" + tt.paymentLink)
			require.True(t, ok)
			assert.Equal(t, tt.family, policy.Family)
			assert.Equal(t, tt.tier, policy.Tier)
			assert.Equal(t, tt.days, policy.DurationDays)
		})
	}
}

func TestLookupPolicyUnknownLink(t *testing.T) {
	_, ok := LookupPolicy("https://buy.stripe.com/deadbeef")
	require.False(t, ok)
	_, ok = LookupPolicy("")
	require.False(t, ok)
}
