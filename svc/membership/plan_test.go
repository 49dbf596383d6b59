package membership_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstclub/membership/svc/membership"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	t.Run("accepts known values case-insensitively", func(t *testing.T) {
		t.Parallel()
		for in, want := range map[string]membership.Duration{
			"MONTHLY":   membership.DurationMonthly,
			"monthly":   membership.DurationMonthly,
			"Quarterly": membership.DurationQuarterly,
			"YEARLY":    membership.DurationYearly,
		} {
			got, err := membership.ParseDuration(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("rejects unknown values instead of defaulting", func(t *testing.T) {
		t.Parallel()
		_, err := membership.ParseDuration("WEEKLY")
		assert.ErrorIs(t, err, membership.ErrUnknownDuration)
	})
}

func TestDurationEndDate(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		duration membership.Duration
		want     time.Time
	}{
		{membership.DurationMonthly, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
		{membership.DurationQuarterly, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{membership.DurationYearly, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.duration), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.duration.EndDate(start))
		})
	}

	t.Run("unknown duration panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			membership.Duration("WEEKLY").EndDate(start)
		})
	})
}

func TestVisiblePlans(t *testing.T) {
	t.Parallel()

	tiers := testTiers()
	plans := []membership.Plan{
		{ID: membership.PlanID("Platinum", membership.DurationMonthly), TierName: "Platinum", Duration: membership.DurationMonthly},
		{ID: membership.PlanID("Gold", membership.DurationYearly), TierName: "Gold", Duration: membership.DurationYearly},
		{ID: membership.PlanID("Silver", membership.DurationMonthly), TierName: "Silver", Duration: membership.DurationMonthly},
		{ID: membership.PlanID("Gold", membership.DurationMonthly), TierName: "Gold", Duration: membership.DurationMonthly},
	}

	t.Run("default tier sees only its own plans", func(t *testing.T) {
		t.Parallel()
		visible := membership.VisiblePlans(tiers[0], tiers, plans)
		require.Len(t, visible, 1)
		assert.Equal(t, "Silver", visible[0].TierName)
	})

	t.Run("middle tier sees its own and lower plans", func(t *testing.T) {
		t.Parallel()
		visible := membership.VisiblePlans(tiers[1], tiers, plans)
		require.Len(t, visible, 3)
		for _, p := range visible {
			assert.NotEqual(t, "Platinum", p.TierName)
		}
	})

	t.Run("top tier sees everything", func(t *testing.T) {
		t.Parallel()
		visible := membership.VisiblePlans(tiers[2], tiers, plans)
		assert.Len(t, visible, len(plans))
	})

	t.Run("orders by tier rank then duration", func(t *testing.T) {
		t.Parallel()
		visible := membership.VisiblePlans(tiers[2], tiers, plans)
		names := make([]string, 0, len(visible))
		for _, p := range visible {
			names = append(names, p.Name())
		}
		assert.Equal(t, []string{
			"Silver MONTHLY",
			"Gold MONTHLY",
			"Gold YEARLY",
			"Platinum MONTHLY",
		}, names)
	})
}
