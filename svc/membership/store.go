package membership

import (
	"context"

	"github.com/google/uuid"
)

// Storage is the persistence collaborator the engine works against.
//
// Tier and plan writes exist for catalog seeding only; both catalogs are
// read-mostly reference data once the service is running.
type Storage interface {
	// GetUser retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	// SaveUser creates or updates a user. A new user whose email collides
	// with another user fails with ErrEmailAlreadyUsed.
	SaveUser(ctx context.Context, user *User) (*User, error)

	// GetPlan retrieves a plan by ID. Returns ErrPlanNotFound if absent.
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)

	// ListPlans returns the full plan catalog.
	ListPlans(ctx context.Context) ([]Plan, error)

	// SavePlan upserts a plan by its (tier, duration) pair.
	SavePlan(ctx context.Context, plan *Plan) (*Plan, error)

	// ListTiers returns the full tier catalog.
	ListTiers(ctx context.Context) ([]Tier, error)

	// GetTierByName retrieves a tier by name, case-insensitively.
	// Returns ErrTierNotFound if absent.
	GetTierByName(ctx context.Context, name string) (*Tier, error)

	// SaveTier upserts a tier by name.
	SaveTier(ctx context.Context, tier *Tier) (*Tier, error)

	// GetSubscriptionByUser retrieves the user's subscription record
	// regardless of status. Returns ErrSubscriptionNotFound if the user has
	// never subscribed.
	GetSubscriptionByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// SaveSubscription upserts the subscription by identity, comparing the
	// carried Version against the stored one. A stale version fails with
	// ErrVersionConflict; a successful save returns the record with the
	// version bumped.
	SaveSubscription(ctx context.Context, sub *Subscription) (*Subscription, error)
}
