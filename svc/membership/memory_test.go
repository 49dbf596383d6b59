package membership_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstclub/membership/svc/membership"
)

func TestMemoryStorageUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round-trips a user", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		user := &membership.User{ID: uuid.New(), Name: "John", Email: "john@example.com"}
		_, err := store.SaveUser(ctx, user)
		require.NoError(t, err)

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()
		_, err := store.GetUser(ctx, uuid.New())
		assert.ErrorIs(t, err, membership.ErrUserNotFound)
	})

	t.Run("email uniqueness ignores case", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		_, err := store.SaveUser(ctx, &membership.User{ID: uuid.New(), Name: "A", Email: "dup@example.com"})
		require.NoError(t, err)

		_, err = store.SaveUser(ctx, &membership.User{ID: uuid.New(), Name: "B", Email: "DUP@example.com"})
		assert.ErrorIs(t, err, membership.ErrEmailAlreadyUsed)
	})

	t.Run("updating a user keeps their email", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		user := &membership.User{ID: uuid.New(), Name: "A", Email: "a@example.com"}
		_, err := store.SaveUser(ctx, user)
		require.NoError(t, err)

		user.TotalOrders = 3
		_, err = store.SaveUser(ctx, user)
		require.NoError(t, err)
	})
}

func TestMemoryStorageCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("tier lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		_, err := store.SaveTier(ctx, &membership.Tier{Name: "Silver", Rank: 1, Default: true})
		require.NoError(t, err)

		tier, err := store.GetTierByName(ctx, "silver")
		require.NoError(t, err)
		assert.Equal(t, "Silver", tier.Name)

		_, err = store.GetTierByName(ctx, "Bronze")
		assert.ErrorIs(t, err, membership.ErrTierNotFound)
	})

	t.Run("stored tiers are isolated from caller mutation", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		tier := &membership.Tier{Name: "Silver", Rank: 1, Benefits: map[string]string{"DISCOUNT": "5%"}}
		_, err := store.SaveTier(ctx, tier)
		require.NoError(t, err)

		tier.Benefits["DISCOUNT"] = "95%"

		got, err := store.GetTierByName(ctx, "Silver")
		require.NoError(t, err)
		assert.Equal(t, "5%", got.Benefits["DISCOUNT"])
	})

	t.Run("plans keep insertion order", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		first := membership.Plan{ID: uuid.New(), TierName: "Silver", Duration: membership.DurationMonthly}
		second := membership.Plan{ID: uuid.New(), TierName: "Silver", Duration: membership.DurationYearly}
		_, err := store.SavePlan(ctx, &first)
		require.NoError(t, err)
		_, err = store.SavePlan(ctx, &second)
		require.NoError(t, err)

		plans, err := store.ListPlans(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, first.ID, plans[0].ID)
		assert.Equal(t, second.ID, plans[1].ID)
	})
}

func TestMemoryStorageSubscriptionCAS(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newSub := func(userID uuid.UUID) *membership.Subscription {
		return &membership.Subscription{
			ID:     uuid.New(),
			UserID: userID,
			PlanID: uuid.New(),
			Status: membership.StatusActive,
		}
	}

	t.Run("save bumps the version", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		saved, err := store.SaveSubscription(ctx, newSub(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.Version)

		saved, err = store.SaveSubscription(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, int64(2), saved.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()
		userID := uuid.New()

		first, err := store.SaveSubscription(ctx, newSub(userID))
		require.NoError(t, err)

		stale := *first
		_, err = store.SaveSubscription(ctx, first)
		require.NoError(t, err)

		_, err = store.SaveSubscription(ctx, &stale)
		assert.ErrorIs(t, err, membership.ErrVersionConflict)
	})

	t.Run("creating with a nonzero version is rejected", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()

		sub := newSub(uuid.New())
		sub.Version = 7
		_, err := store.SaveSubscription(ctx, sub)
		assert.ErrorIs(t, err, membership.ErrVersionConflict)
	})

	t.Run("concurrent writers cannot both win", func(t *testing.T) {
		t.Parallel()
		store := membership.NewMemoryStorage()
		userID := uuid.New()

		base, err := store.SaveSubscription(ctx, newSub(userID))
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				attempt := *base
				_, errs[i] = store.SaveSubscription(ctx, &attempt)
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, membership.ErrVersionConflict)
			}
		}
		assert.Equal(t, 1, wins, "exactly one concurrent writer may succeed")
	})
}
