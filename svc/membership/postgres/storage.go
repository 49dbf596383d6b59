package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firstclub/membership/pkg/pg"
	"github.com/firstclub/membership/svc/membership"
)

// Storage is the PostgreSQL-backed persistence collaborator.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage creates a Storage on top of an established connection pool.
// Panics on a nil pool to fail fast during initialization.
func NewStorage(pool *pgxpool.Pool) *Storage {
	if pool == nil {
		panic("postgres: connection pool is required")
	}
	return &Storage{pool: pool}
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	var u membership.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, total_orders, total_spent_cents, cohort
		FROM users
		WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.TotalOrders, &u.TotalSpent, &u.Cohort)
	if pg.IsNotFoundError(err) {
		return nil, membership.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Storage) SaveUser(ctx context.Context, user *membership.User) (*membership.User, error) {
	var u membership.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, total_orders, total_spent_cents, cohort)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			total_orders = EXCLUDED.total_orders,
			total_spent_cents = EXCLUDED.total_spent_cents,
			cohort = EXCLUDED.cohort
		RETURNING id, name, email, total_orders, total_spent_cents, cohort`,
		user.ID, user.Name, user.Email, user.TotalOrders, user.TotalSpent, user.Cohort,
	).Scan(&u.ID, &u.Name, &u.Email, &u.TotalOrders, &u.TotalSpent, &u.Cohort)
	if pg.IsDuplicateKeyError(err) {
		return nil, membership.ErrEmailAlreadyUsed
	}
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &u, nil
}

func (s *Storage) GetPlan(ctx context.Context, id uuid.UUID) (*membership.Plan, error) {
	var p membership.Plan
	err := s.pool.QueryRow(ctx, `
		SELECT id, tier_name, duration, price_cents, currency
		FROM plans
		WHERE id = $1`, id,
	).Scan(&p.ID, &p.TierName, &p.Duration, &p.Price.Amount, &p.Price.Currency)
	if pg.IsNotFoundError(err) {
		return nil, membership.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (s *Storage) ListPlans(ctx context.Context) ([]membership.Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.tier_name, p.duration, p.price_cents, p.currency
		FROM plans p
		JOIN tiers t ON t.name = p.tier_name
		ORDER BY t.rank, p.duration`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []membership.Plan
	for rows.Next() {
		var p membership.Plan
		if err := rows.Scan(&p.ID, &p.TierName, &p.Duration, &p.Price.Amount, &p.Price.Currency); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (s *Storage) SavePlan(ctx context.Context, plan *membership.Plan) (*membership.Plan, error) {
	var p membership.Plan
	err := s.pool.QueryRow(ctx, `
		INSERT INTO plans (id, tier_name, duration, price_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tier_name, duration) DO UPDATE SET
			price_cents = EXCLUDED.price_cents,
			currency = EXCLUDED.currency
		RETURNING id, tier_name, duration, price_cents, currency`,
		plan.ID, plan.TierName, plan.Duration, plan.Price.Amount, plan.Price.Currency,
	).Scan(&p.ID, &p.TierName, &p.Duration, &p.Price.Amount, &p.Price.Currency)
	if err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}
	return &p, nil
}

func (s *Storage) ListTiers(ctx context.Context) ([]membership.Tier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, rank, min_orders, min_spent_cents, required_cohort, benefits, is_default
		FROM tiers
		ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []membership.Tier
	for rows.Next() {
		var t membership.Tier
		if err := rows.Scan(&t.Name, &t.Rank, &t.MinOrders, &t.MinSpent, &t.RequiredCohort, &t.Benefits, &t.Default); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (s *Storage) GetTierByName(ctx context.Context, name string) (*membership.Tier, error) {
	var t membership.Tier
	err := s.pool.QueryRow(ctx, `
		SELECT name, rank, min_orders, min_spent_cents, required_cohort, benefits, is_default
		FROM tiers
		WHERE lower(name) = lower($1)`, name,
	).Scan(&t.Name, &t.Rank, &t.MinOrders, &t.MinSpent, &t.RequiredCohort, &t.Benefits, &t.Default)
	if pg.IsNotFoundError(err) {
		return nil, membership.ErrTierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tier: %w", err)
	}
	return &t, nil
}

func (s *Storage) SaveTier(ctx context.Context, tier *membership.Tier) (*membership.Tier, error) {
	var t membership.Tier
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tiers (name, rank, min_orders, min_spent_cents, required_cohort, benefits, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			rank = EXCLUDED.rank,
			min_orders = EXCLUDED.min_orders,
			min_spent_cents = EXCLUDED.min_spent_cents,
			required_cohort = EXCLUDED.required_cohort,
			benefits = EXCLUDED.benefits,
			is_default = EXCLUDED.is_default
		RETURNING name, rank, min_orders, min_spent_cents, required_cohort, benefits, is_default`,
		tier.Name, tier.Rank, tier.MinOrders, tier.MinSpent, tier.RequiredCohort, tier.Benefits, tier.Default,
	).Scan(&t.Name, &t.Rank, &t.MinOrders, &t.MinSpent, &t.RequiredCohort, &t.Benefits, &t.Default)
	if err != nil {
		return nil, fmt.Errorf("save tier: %w", err)
	}
	return &t, nil
}

func (s *Storage) GetSubscriptionByUser(ctx context.Context, userID uuid.UUID) (*membership.Subscription, error) {
	var sub membership.Subscription
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, plan_id, start_date, end_date, status, version
		FROM subscriptions
		WHERE user_id = $1`, userID,
	).Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &sub.Status, &sub.Version)
	if pg.IsNotFoundError(err) {
		return nil, membership.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func (s *Storage) SaveSubscription(ctx context.Context, sub *membership.Subscription) (*membership.Subscription, error) {
	var saved membership.Subscription

	if sub.Version == 0 {
		err := s.pool.QueryRow(ctx, `
			INSERT INTO subscriptions (id, user_id, plan_id, start_date, end_date, status, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)
			RETURNING id, user_id, plan_id, start_date, end_date, status, version`,
			sub.ID, sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status,
		).Scan(&saved.ID, &saved.UserID, &saved.PlanID, &saved.StartDate, &saved.EndDate, &saved.Status, &saved.Version)
		if pg.IsDuplicateKeyError(err) {
			// Another writer created the record between our read and write.
			return nil, membership.ErrVersionConflict
		}
		if err != nil {
			return nil, fmt.Errorf("insert subscription: %w", err)
		}
		return &saved, nil
	}

	err := s.pool.QueryRow(ctx, `
		UPDATE subscriptions SET
			plan_id = $3,
			start_date = $4,
			end_date = $5,
			status = $6,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING id, user_id, plan_id, start_date, end_date, status, version`,
		sub.ID, sub.Version, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status,
	).Scan(&saved.ID, &saved.UserID, &saved.PlanID, &saved.StartDate, &saved.EndDate, &saved.Status, &saved.Version)
	if pg.IsNotFoundError(err) {
		return nil, membership.ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return &saved, nil
}

var _ membership.Storage = (*Storage)(nil)
