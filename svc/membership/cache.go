package membership

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyTiers = "membership:catalog:tiers"
	cacheKeyPlans = "membership:catalog:plans"
)

// CatalogCache decorates a Storage with a Redis read-through cache over the
// tier and plan catalogs. Both catalogs are immutable reference data after
// seeding, so a short TTL is purely a safety valve for redeploys that change
// the seed file.
//
// Cache failures degrade to direct storage reads; Redis being down never
// fails a membership operation. User and subscription operations pass
// through untouched.
type CatalogCache struct {
	Storage

	client redis.UniversalClient
	ttl    time.Duration
}

// NewCatalogCache wraps inner with catalog caching.
// Panics on nil dependencies to fail fast during initialization.
func NewCatalogCache(inner Storage, client redis.UniversalClient, ttl time.Duration) *CatalogCache {
	if inner == nil {
		panic("membership: inner Storage is required")
	}
	if client == nil {
		panic("membership: redis client is required")
	}
	return &CatalogCache{Storage: inner, client: client, ttl: ttl}
}

func (c *CatalogCache) ListTiers(ctx context.Context) ([]Tier, error) {
	if raw, err := c.client.Get(ctx, cacheKeyTiers).Bytes(); err == nil {
		var tiers []Tier
		if err := json.Unmarshal(raw, &tiers); err == nil {
			return tiers, nil
		}
	}

	tiers, err := c.Storage.ListTiers(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(tiers); err == nil {
		_ = c.client.Set(ctx, cacheKeyTiers, raw, c.ttl).Err()
	}
	return tiers, nil
}

func (c *CatalogCache) GetTierByName(ctx context.Context, name string) (*Tier, error) {
	tiers, err := c.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tiers {
		if strings.EqualFold(tiers[i].Name, name) {
			return &tiers[i], nil
		}
	}
	return nil, ErrTierNotFound
}

func (c *CatalogCache) ListPlans(ctx context.Context) ([]Plan, error) {
	if raw, err := c.client.Get(ctx, cacheKeyPlans).Bytes(); err == nil {
		var plans []Plan
		if err := json.Unmarshal(raw, &plans); err == nil {
			return plans, nil
		}
	}

	plans, err := c.Storage.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(plans); err == nil {
		_ = c.client.Set(ctx, cacheKeyPlans, raw, c.ttl).Err()
	}
	return plans, nil
}

func (c *CatalogCache) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	plans, err := c.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, ErrPlanNotFound
}

// SaveTier writes through and invalidates the cached tier catalog.
func (c *CatalogCache) SaveTier(ctx context.Context, tier *Tier) (*Tier, error) {
	saved, err := c.Storage.SaveTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	_ = c.client.Del(ctx, cacheKeyTiers).Err()
	return saved, nil
}

// SavePlan writes through and invalidates the cached plan catalog.
func (c *CatalogCache) SavePlan(ctx context.Context, plan *Plan) (*Plan, error) {
	saved, err := c.Storage.SavePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	_ = c.client.Del(ctx, cacheKeyPlans).Err()
	return saved, nil
}
