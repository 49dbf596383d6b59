package membership

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	membershipsvc "github.com/firstclub/membership/svc/membership"
)

// Module bundles the HTTP handlers for the membership API.
type Module struct {
	svc membershipsvc.Service
	log *slog.Logger
}

// ModuleOption customizes optional module collaborators.
type ModuleOption func(*Module)

// WithLogger attaches a structured logger used for request-level warnings.
func WithLogger(log *slog.Logger) ModuleOption {
	return func(m *Module) {
		if log != nil {
			m.log = log
		}
	}
}

// NewModule creates the HTTP module. Panics on a nil service to fail fast
// during composition.
func NewModule(svc membershipsvc.Service, opts ...ModuleOption) *Module {
	if svc == nil {
		panic("membership module: service is required")
	}
	m := &Module{
		svc: svc,
		log: slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler returns the module's router, ready to mount.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/api/membership", membership.NewModule(svc).Handler())
func (m *Module) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/users", m.registerUser)
	r.Post("/orders", m.recordOrder)
	r.Get("/plans/{userID}", m.availablePlans)
	r.Post("/subscribe", m.subscribe)
	r.Post("/cancel", m.cancelSubscription)
	r.Get("/current/{userID}", m.currentSubscription)

	return r
}
