package enums

import "fmt"

// ProductFamily distinguishes the two fulfillment pipelines.
type ProductFamily string

const (
	ProductFamilyObywatel ProductFamily = "obywatel"
	ProductFamilyReceipts ProductFamily = "receipts"
)

var validProductFamilies = []ProductFamily{
	ProductFamilyObywatel,
	ProductFamilyReceipts,
}

// String implements fmt.Stringer.
func (f ProductFamily) String() string {
	return string(f)
}

// IsValid reports whether the value is a known ProductFamily.
func (f ProductFamily) IsValid() bool {
	for _, candidate := range validProductFamilies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseProductFamily converts raw input into a ProductFamily.
func ParseProductFamily(value string) (ProductFamily, error) {
	for _, candidate := range validProductFamilies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product family %q", value)
}

// ProductTier splits the obywatel family into its two price points.
type ProductTier string

const (
	ProductTierBasic   ProductTier = "basic"
	ProductTierPremium ProductTier = "premium"
)

// String implements fmt.Stringer.
func (t ProductTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ProductTier.
func (t ProductTier) IsValid() bool {
	return t == ProductTierBasic || t == ProductTierPremium
}
