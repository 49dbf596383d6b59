package membership

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// Subscription binds a user to a plan over a time window. Each user has at
// most one subscription record; plan changes and reactivations overwrite this
// same record rather than creating a new one, so no history trail is kept.
//
// Version is the optimistic-concurrency token: storage implementations bump
// it on every successful save and reject writes carrying a stale value.
type Subscription struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PlanID    uuid.UUID `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    Status    `json:"status"`
	Version   int64     `json:"-"`
}

// IsActive returns true if the subscription is active.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsCancelled returns true if the subscription is cancelled.
func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}
