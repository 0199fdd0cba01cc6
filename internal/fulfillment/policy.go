package fulfillment

import (
	"strings"

	"github.com/mambaservices/storefront-backend/pkg/enums"
)

// Policy describes how a single priced offer is fulfilled once paid.
type Policy struct {
	Family enums.ProductFamily
	// Tier is set for obywatel offers only.
	Tier enums.ProductTier
	// DurationDays is set for receipts offers only.
	DurationDays int
}

// paymentLinkPolicies maps the processor-side payment link id onto a
// fulfillment policy. The link id is the last path segment of the
// payment_link value carried in the checkout session. New offers must be
// added here before their payments can be fulfilled.
var paymentLinkPolicies = map[string]Policy{
	// Live offers.
	"6oU28s5Fo3PjaHLfRCgEg06": {Family: enums.ProductFamilyObywatel, Tier: enums.ProductTierPremium},
	"28E4gA0l499Dg25eNygEg00": {Family: enums.ProductFamilyObywatel, Tier: enums.ProductTierBasic},
	"9B600k7NwbhLdTXdJugEg02": {Family: enums.ProductFamilyReceipts, DurationDays: 31},
	"5kQ00k8RA5Xr2bfdJugEg03": {Family: enums.ProductFamilyReceipts, DurationDays: 999},

	// Test-mode offer.
	"6oU28r2O8f6v3eI0C9cEw00": {Family: enums.ProductFamilyObywatel, Tier: enums.ProductTierPremium},
}

// LookupPolicy resolves a raw payment_link value to its policy.
func LookupPolicy(paymentLink string) (Policy, bool) {
	policy, ok := paymentLinkPolicies[LinkID(paymentLink)]
	return policy, ok
}

// LinkID extracts the link id from a payment_link value. The processor may
// send either the bare id or a full URL; in both cases the id is the last
// path segment.
func LinkID(paymentLink string) string {
	trimmed := strings.TrimSpace(paymentLink)
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}
