package membership

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// memoryStorage is an in-memory Storage used in tests and single-process
// setups. All reads and writes deep-copy records so callers can never mutate
// the stored state behind the lock's back.
type memoryStorage struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]User
	emails    map[string]uuid.UUID
	tierOrder []string
	tiers     map[string]Tier
	planOrder []uuid.UUID
	plans     map[uuid.UUID]Plan
	subs      map[uuid.UUID]Subscription // keyed by user ID
}

// NewMemoryStorage returns an empty in-memory Storage.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		users:  make(map[uuid.UUID]User),
		emails: make(map[string]uuid.UUID),
		tiers:  make(map[string]Tier),
		plans:  make(map[uuid.UUID]Plan),
		subs:   make(map[uuid.UUID]Subscription),
	}
}

func (m *memoryStorage) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryStorage) SaveUser(_ context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	if owner, taken := m.emails[email]; taken && owner != user.ID {
		return nil, ErrEmailAlreadyUsed
	}

	// Drop a stale email index entry when the user changes address.
	if prev, ok := m.users[user.ID]; ok && !strings.EqualFold(prev.Email, user.Email) {
		delete(m.emails, strings.ToLower(prev.Email))
	}

	stored := *user
	m.users[user.ID] = stored
	m.emails[email] = user.ID

	out := stored
	return &out, nil
}

func (m *memoryStorage) GetPlan(_ context.Context, id uuid.UUID) (*Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &p, nil
}

func (m *memoryStorage) ListPlans(_ context.Context) ([]Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Plan, 0, len(m.planOrder))
	for _, id := range m.planOrder {
		out = append(out, m.plans[id])
	}
	return out, nil
}

func (m *memoryStorage) SavePlan(_ context.Context, plan *Plan) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plans[plan.ID]; !exists {
		m.planOrder = append(m.planOrder, plan.ID)
	}
	stored := *plan
	m.plans[plan.ID] = stored

	out := stored
	return &out, nil
}

func (m *memoryStorage) ListTiers(_ context.Context) ([]Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Tier, 0, len(m.tierOrder))
	for _, name := range m.tierOrder {
		t := m.tiers[name]
		t.Benefits = maps.Clone(t.Benefits)
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryStorage) GetTierByName(_ context.Context, name string) (*Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tiers[strings.ToLower(name)]
	if !ok {
		return nil, ErrTierNotFound
	}
	t.Benefits = maps.Clone(t.Benefits)
	return &t, nil
}

func (m *memoryStorage) SaveTier(_ context.Context, tier *Tier) (*Tier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(tier.Name)
	if _, exists := m.tiers[key]; !exists {
		m.tierOrder = append(m.tierOrder, key)
	}
	stored := *tier
	stored.Benefits = maps.Clone(tier.Benefits)
	m.tiers[key] = stored

	out := stored
	out.Benefits = maps.Clone(stored.Benefits)
	return &out, nil
}

func (m *memoryStorage) GetSubscriptionByUser(_ context.Context, userID uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subs[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return &s, nil
}

func (m *memoryStorage) SaveSubscription(_ context.Context, sub *Subscription) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.subs[sub.UserID]
	if exists && existing.Version != sub.Version {
		return nil, ErrVersionConflict
	}
	if !exists && sub.Version != 0 {
		return nil, ErrVersionConflict
	}

	stored := *sub
	stored.Version++
	m.subs[sub.UserID] = stored

	out := stored
	return &out, nil
}
