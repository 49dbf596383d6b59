package membership

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	membershipsvc "github.com/firstclub/membership/svc/membership"
)

type registerUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Cohort string `json:"cohort,omitempty"`
}

func (m *Module) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !m.decodeBody(w, r, &req) {
		return
	}

	user, err := m.svc.RegisterUser(r.Context(), req.Name, req.Email, req.Cohort)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respondJSON(w, http.StatusCreated, user)
}

type recordOrderRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
}

func (m *Module) recordOrder(w http.ResponseWriter, r *http.Request) {
	var req recordOrderRequest
	if !m.decodeBody(w, r, &req) {
		return
	}

	user, err := m.svc.RecordOrder(r.Context(), req.UserID, req.AmountCents)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respondJSON(w, http.StatusOK, user)
}

type availablePlansResponse struct {
	EligibleTier *membershipsvc.Tier  `json:"eligible_tier"`
	Plans        []membershipsvc.Plan `json:"plans"`
}

func (m *Module) availablePlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := m.pathUUID(w, r, "userID")
	if !ok {
		return
	}

	tier, err := m.svc.ResolveTier(r.Context(), userID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	plans, err := m.svc.AvailablePlans(r.Context(), userID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}

	m.respondJSON(w, http.StatusOK, availablePlansResponse{
		EligibleTier: tier,
		Plans:        plans,
	})
}

type subscribeRequest struct {
	UserID uuid.UUID `json:"user_id"`
	PlanID uuid.UUID `json:"plan_id"`
}

func (m *Module) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !m.decodeBody(w, r, &req) {
		return
	}

	sub, err := m.svc.Subscribe(r.Context(), req.UserID, req.PlanID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respondJSON(w, http.StatusOK, sub)
}

type cancelRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (m *Module) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !m.decodeBody(w, r, &req) {
		return
	}

	if err := m.svc.CancelSubscription(r.Context(), req.UserID); err != nil {
		m.respondError(w, r, err)
		return
	}
	m.respondJSON(w, http.StatusNoContent, nil)
}

func (m *Module) currentSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := m.pathUUID(w, r, "userID")
	if !ok {
		return
	}

	sub, err := m.svc.CurrentSubscription(r.Context(), userID)
	if err != nil {
		m.respondError(w, r, err)
		return
	}
	if sub == nil {
		// No subscription on record is a valid state, not an error.
		m.respondJSON(w, http.StatusNoContent, nil)
		return
	}
	m.respondJSON(w, http.StatusOK, sub)
}

func (m *Module) pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		m.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
