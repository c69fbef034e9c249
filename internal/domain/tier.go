package domain

import "fmt"

// Tier is a subscription tier. Tiers form a total order
// free < advanced < premium < family; comparisons go through Rank, never
// through string comparison.
type Tier string

const (
	TierFree     Tier = "free"
	TierAdvanced Tier = "advanced"
	TierPremium  Tier = "premium"
	TierFamily   Tier = "family"
)

var tierRank = map[Tier]int{
	TierFree:     0,
	TierAdvanced: 1,
	TierPremium:  2,
	TierFamily:   3,
}

// ParseTier validates a wire/database value against the closed tier set.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierRank[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Rank returns the position of t in the tier order. Unknown tiers rank below
// free, so they never satisfy a requirement.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return -1
}

// Meets reports whether t satisfies the required tier, i.e. rank(t) >= rank(required).
func (t Tier) Meets(required Tier) bool {
	return t.Rank() >= required.Rank()
}

func (t Tier) String() string { return string(t) }
