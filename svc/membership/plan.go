package membership

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Duration is the billing cadence of a plan.
type Duration string

const (
	DurationMonthly   Duration = "MONTHLY"
	DurationQuarterly Duration = "QUARTERLY"
	DurationYearly    Duration = "YEARLY"
)

// ParseDuration converts a catalog value into a Duration, case-insensitively.
// Unrecognized values are a configuration error at load time; there is no
// silent default.
func ParseDuration(s string) (Duration, error) {
	switch Duration(strings.ToUpper(s)) {
	case DurationMonthly:
		return DurationMonthly, nil
	case DurationQuarterly:
		return DurationQuarterly, nil
	case DurationYearly:
		return DurationYearly, nil
	default:
		return "", ErrUnknownDuration
	}
}

// Valid reports whether d is one of the known billing cadences.
func (d Duration) Valid() bool {
	switch d {
	case DurationMonthly, DurationQuarterly, DurationYearly:
		return true
	}
	return false
}

// EndDate returns the end of a billing period that starts at start:
// one month for MONTHLY, three months for QUARTERLY, one year for YEARLY.
// Unknown durations are rejected when the catalog is loaded, so reaching the
// panic branch means a plan bypassed validation.
func (d Duration) EndDate(start time.Time) time.Time {
	switch d {
	case DurationMonthly:
		return start.AddDate(0, 1, 0)
	case DurationQuarterly:
		return start.AddDate(0, 3, 0)
	case DurationYearly:
		return start.AddDate(1, 0, 0)
	}
	panic("membership: EndDate called with unknown duration " + string(d))
}

// months is the sort key used to order plans of equal tier rank.
func (d Duration) months() int {
	switch d {
	case DurationQuarterly:
		return 3
	case DurationYearly:
		return 12
	default:
		return 1
	}
}

// Money represents a monetary amount in the smallest currency unit.
// For example, $19.99 USD is Amount: 1999, Currency: "USD".
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Plan is a purchasable offering belonging to exactly one tier. Plans are
// seeded at catalog setup and immutable afterwards; the catalog allows at
// most one plan per (tier, duration) pair.
type Plan struct {
	ID       uuid.UUID `json:"id"`
	TierName string    `json:"tier"`
	Duration Duration  `json:"duration"`
	Price    Money     `json:"price"`
}

// Name returns the human-readable plan name, e.g. "Gold MONTHLY".
func (p Plan) Name() string {
	return p.TierName + " " + string(p.Duration)
}

// VisiblePlans filters the plan catalog down to what a user qualified for the
// eligible tier may purchase: the eligible tier's plans and every lower
// tier's plans. Buying below qualification is deliberate downgrade support.
// The result is ordered by ascending tier rank, then billing duration, so
// output is deterministic.
func VisiblePlans(eligible Tier, tiers []Tier, plans []Plan) []Plan {
	rankByTier := make(map[string]int, len(tiers))
	for _, t := range tiers {
		rankByTier[strings.ToLower(t.Name)] = t.Rank
	}

	visible := make([]Plan, 0, len(plans))
	for _, p := range plans {
		rank, known := rankByTier[strings.ToLower(p.TierName)]
		if known && rank <= eligible.Rank {
			visible = append(visible, p)
		}
	}

	slices.SortFunc(visible, func(a, b Plan) int {
		ra := rankByTier[strings.ToLower(a.TierName)]
		rb := rankByTier[strings.ToLower(b.TierName)]
		if v := cmp.Compare(ra, rb); v != 0 {
			return v
		}
		return cmp.Compare(a.Duration.months(), b.Duration.months())
	})
	return visible
}
