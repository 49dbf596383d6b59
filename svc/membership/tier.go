package membership

import "strings"

// Tier is a qualification tier definition. Tiers form a static reference
// catalog: they are created at seed time and immutable afterwards.
//
// Rank establishes the total order over tiers. It is not part of the seed
// data; Catalog.Validate derives it from the spend thresholds and rejects
// catalogs where that order would be ambiguous.
type Tier struct {
	Name           string            `json:"name"`
	Rank           int               `json:"rank"`
	MinOrders      int               `json:"min_orders"`
	MinSpent       int64             `json:"min_spent_cents"`
	RequiredCohort string            `json:"required_cohort,omitempty"`
	Benefits       map[string]string `json:"benefits,omitempty"`
	Default        bool              `json:"default"`
}

// Qualifies reports whether the user meets this tier's criteria: both
// statistic thresholds jointly, plus the cohort gate when the tier requires
// one. Cohort comparison ignores case.
func (t Tier) Qualifies(u User) bool {
	if u.TotalOrders < t.MinOrders || u.TotalSpent < t.MinSpent {
		return false
	}
	if t.RequiredCohort == "" {
		return true
	}
	return strings.EqualFold(t.RequiredCohort, u.Cohort)
}

// Outranks reports whether t sits strictly above other in the tier order.
func (t Tier) Outranks(other Tier) bool {
	return t.Rank > other.Rank
}

// EligibleTier returns the highest-ranked tier the user qualifies for. A user
// who qualifies for nothing lands on the catalog's designated default tier;
// a catalog without one is a configuration defect.
func EligibleTier(u User, tiers []Tier) (Tier, error) {
	if len(tiers) == 0 {
		return Tier{}, ErrEmptyTierCatalog
	}

	var best, fallback *Tier
	for i := range tiers {
		t := &tiers[i]
		if t.Default && fallback == nil {
			fallback = t
		}
		if t.Qualifies(u) && (best == nil || t.Outranks(*best)) {
			best = t
		}
	}

	if best != nil {
		return *best, nil
	}
	if fallback == nil {
		return Tier{}, ErrNoDefaultTier
	}
	return *fallback, nil
}
