package membership

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the operation surface the engine exposes to callers, independent
// of transport.
type Service interface {
	// RegisterUser creates a user with zeroed order statistics.
	RegisterUser(ctx context.Context, name, email, cohort string) (*User, error)

	// RecordOrder increments the user's order count by one and their total
	// spend by amountCents, then returns the updated user.
	RecordOrder(ctx context.Context, userID uuid.UUID, amountCents int64) (*User, error)

	// ResolveTier computes the single tier the user currently qualifies for.
	ResolveTier(ctx context.Context, userID uuid.UUID) (*Tier, error)

	// AvailablePlans returns the plans the user may purchase: those of the
	// eligible tier and of every lower tier.
	AvailablePlans(ctx context.Context, userID uuid.UUID) ([]Plan, error)

	// Subscribe puts the user on the given plan. The plan's tier must not
	// outrank the user's eligible tier. An existing subscription record is
	// overwritten in place and reactivated; otherwise a new one is created.
	Subscribe(ctx context.Context, userID, planID uuid.UUID) (*Subscription, error)

	// CancelSubscription flips the user's subscription to CANCELLED. The
	// record, its plan, and its dates are retained.
	CancelSubscription(ctx context.Context, userID uuid.UUID) error

	// CurrentSubscription returns the user's subscription regardless of
	// status, or nil without error if the user has never subscribed.
	CurrentSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)
}

type service struct {
	store Storage
	now   func() time.Time
	log   *slog.Logger
}

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithNowFunc overrides the clock used for subscription start dates.
// Intended for tests that need deterministic billing windows.
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for lifecycle events. Without it the service
// stays silent.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the membership engine on top of the given storage.
// Panics on a nil store to fail fast during initialization.
func NewService(store Storage, opts ...ServiceOption) Service {
	if store == nil {
		panic("membership: Storage is required")
	}

	s := &service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   slog.New(discardLogHandler{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterUser(ctx context.Context, name, email, cohort string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, ErrInvalidUserData
	}

	return s.store.SaveUser(ctx, &User{
		ID:     uuid.New(),
		Name:   name,
		Email:  email,
		Cohort: strings.TrimSpace(cohort),
	})
}

func (s *service) RecordOrder(ctx context.Context, userID uuid.UUID, amountCents int64) (*User, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidOrder
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.TotalOrders++
	user.TotalSpent += amountCents
	return s.store.SaveUser(ctx, user)
}

func (s *service) ResolveTier(ctx context.Context, userID uuid.UUID) (*Tier, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := EligibleTier(*user, tiers)
	if err != nil {
		return nil, err
	}
	return &eligible, nil
}

func (s *service) AvailablePlans(ctx context.Context, userID uuid.UUID) ([]Plan, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := EligibleTier(*user, tiers)
	if err != nil {
		return nil, err
	}

	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	return VisiblePlans(eligible, tiers, plans), nil
}

func (s *service) Subscribe(ctx context.Context, userID, planID uuid.UUID) (*Subscription, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := EligibleTier(*user, tiers)
	if err != nil {
		return nil, err
	}

	planTier, found := tierByName(tiers, plan.TierName)
	if !found {
		return nil, errors.Join(ErrUnknownPlanTier, errors.New("plan "+plan.Name()))
	}

	// Upgrades must be earned; downgrades are always allowed.
	if planTier.Outranks(eligible) {
		return nil, ErrIneligible
	}

	sub, err := s.store.GetSubscriptionByUser(ctx, userID)
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		sub = &Subscription{ID: uuid.New(), UserID: user.ID}
	case err != nil:
		return nil, err
	}

	now := s.now()
	sub.PlanID = plan.ID
	sub.StartDate = now
	sub.EndDate = plan.Duration.EndDate(now)
	sub.Status = StatusActive

	saved, err := s.store.SaveSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription activated",
		"user_id", user.ID,
		"plan", plan.Name(),
		"end_date", saved.EndDate,
	)
	return saved, nil
}

func (s *service) CancelSubscription(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.store.GetSubscriptionByUser(ctx, userID)
	if err != nil {
		return err
	}

	sub.Status = StatusCancelled
	if _, err := s.store.SaveSubscription(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription cancelled", "user_id", userID)
	return nil
}

func (s *service) CurrentSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	sub, err := s.store.GetSubscriptionByUser(ctx, userID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		// Never having subscribed is an ordinary outcome, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func tierByName(tiers []Tier, name string) (Tier, bool) {
	for _, t := range tiers {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Tier{}, false
}

// discardLogHandler drops all records; used when no logger is configured.
type discardLogHandler struct{}

func (discardLogHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardLogHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardLogHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardLogHandler) WithGroup(string) slog.Handler           { return d }
