package membership

import "github.com/google/uuid"

// User is a customer and their accrued order statistics. The engine only
// reads the statistics to resolve eligibility; they are mutated externally
// through RecordOrder as orders come in.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TotalOrders int       `json:"total_orders"`
	TotalSpent  int64     `json:"total_spent_cents"`
	Cohort      string    `json:"cohort,omitempty"`
}
