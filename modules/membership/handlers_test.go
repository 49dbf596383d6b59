package membership_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	module "github.com/firstclub/membership/modules/membership"
	"github.com/firstclub/membership/svc/membership"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	catalog := &membership.Catalog{
		Tiers: []membership.Tier{
			{Name: "Silver", Default: true, Benefits: map[string]string{"DISCOUNT": "5%"}},
			{Name: "Gold", MinOrders: 10, MinSpent: 50_000},
			{Name: "Platinum", MinOrders: 50, MinSpent: 200_000},
		},
		Plans: []membership.Plan{
			{TierName: "Silver", Duration: membership.DurationMonthly, Price: membership.Money{Amount: 999, Currency: "USD"}},
			{TierName: "Gold", Duration: membership.DurationMonthly, Price: membership.Money{Amount: 1999, Currency: "USD"}},
			{TierName: "Gold", Duration: membership.DurationYearly, Price: membership.Money{Amount: 19999, Currency: "USD"}},
		},
	}
	require.NoError(t, catalog.Validate())

	store := membership.NewMemoryStorage()
	require.NoError(t, catalog.Seed(context.Background(), store))

	svc := membership.NewService(store, membership.WithNowFunc(func() time.Time { return testNow }))
	return module.NewModule(svc).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func registerUser(t *testing.T, h http.Handler, email string) membership.User {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{
		"name":  "John Doe",
		"email": email,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user membership.User
	decodeInto(t, rec, &user)
	return user
}

func TestRegisterUserEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates a user", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		user := registerUser(t, h, "john@example.com")
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "john@example.com", user.Email)
		assert.Zero(t, user.TotalOrders)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		registerUser(t, h, "dup@example.com")
		rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{
			"name":  "Jane",
			"email": "DUP@example.com",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("blank fields are rejected", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := doJSON(t, h, http.MethodPost, "/users", map[string]string{"name": "No Email"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordOrderEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("accumulates order statistics", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "buyer@example.com")

		rec := doJSON(t, h, http.MethodPost, "/orders", map[string]any{
			"user_id":      user.ID,
			"amount_cents": 1250,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated membership.User
		decodeInto(t, rec, &updated)
		assert.Equal(t, 1, updated.TotalOrders)
		assert.Equal(t, int64(1250), updated.TotalSpent)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := doJSON(t, h, http.MethodPost, "/orders", map[string]any{
			"user_id":      uuid.New(),
			"amount_cents": 100,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "zero@example.com")

		rec := doJSON(t, h, http.MethodPost, "/orders", map[string]any{
			"user_id":      user.ID,
			"amount_cents": 0,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAvailablePlansEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("fresh user sees only the default tier", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "fresh@example.com")

		rec := doJSON(t, h, http.MethodGet, "/plans/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			EligibleTier membership.Tier   `json:"eligible_tier"`
			Plans        []membership.Plan `json:"plans"`
		}
		decodeInto(t, rec, &resp)
		assert.Equal(t, "Silver", resp.EligibleTier.Name)
		require.Len(t, resp.Plans, 1)
		assert.Equal(t, "Silver", resp.Plans[0].TierName)
	})

	t.Run("qualified user sees plans up to their tier", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "gold@example.com")

		for n := 0; n < 12; n++ {
			rec := doJSON(t, h, http.MethodPost, "/orders", map[string]any{
				"user_id":      user.ID,
				"amount_cents": 5_000,
			})
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := doJSON(t, h, http.MethodGet, "/plans/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			EligibleTier membership.Tier   `json:"eligible_tier"`
			Plans        []membership.Plan `json:"plans"`
		}
		decodeInto(t, rec, &resp)
		assert.Equal(t, "Gold", resp.EligibleTier.Name)
		assert.Len(t, resp.Plans, 3)
	})

	t.Run("invalid user id", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := doJSON(t, h, http.MethodGet, "/plans/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := doJSON(t, h, http.MethodGet, "/plans/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubscribeEndpoint(t *testing.T) {
	t.Parallel()

	silverMonthly := membership.PlanID("Silver", membership.DurationMonthly)
	goldYearly := membership.PlanID("Gold", membership.DurationYearly)

	t.Run("subscribes to an eligible plan", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "sub@example.com")

		rec := doJSON(t, h, http.MethodPost, "/subscribe", map[string]any{
			"user_id": user.ID,
			"plan_id": silverMonthly,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sub membership.Subscription
		decodeInto(t, rec, &sub)
		assert.Equal(t, membership.StatusActive, sub.Status)
		assert.Equal(t, silverMonthly, sub.PlanID)
		assert.Equal(t, testNow.AddDate(0, 1, 0), sub.EndDate)
	})

	t.Run("plan above eligible tier is rejected", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "reach@example.com")

		rec := doJSON(t, h, http.MethodPost, "/subscribe", map[string]any{
			"user_id": user.ID,
			"plan_id": goldYearly,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "noplan@example.com")

		rec := doJSON(t, h, http.MethodPost, "/subscribe", map[string]any{
			"user_id": user.ID,
			"plan_id": uuid.New(),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubscriptionLifecycleEndpoints(t *testing.T) {
	t.Parallel()

	silverMonthly := membership.PlanID("Silver", membership.DurationMonthly)

	t.Run("current is empty before subscribing", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "empty@example.com")

		rec := doJSON(t, h, http.MethodGet, "/current/"+user.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("cancel flips status and keeps the record", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "cancel@example.com")

		rec := doJSON(t, h, http.MethodPost, "/subscribe", map[string]any{
			"user_id": user.ID,
			"plan_id": silverMonthly,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/cancel", map[string]any{"user_id": user.ID})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, h, http.MethodGet, "/current/"+user.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var sub membership.Subscription
		decodeInto(t, rec, &sub)
		assert.Equal(t, membership.StatusCancelled, sub.Status)
		assert.Equal(t, silverMonthly, sub.PlanID)
	})

	t.Run("cancel without a subscription", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		user := registerUser(t, h, "nosub@example.com")

		rec := doJSON(t, h, http.MethodPost, "/cancel", map[string]any{"user_id": user.ID})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("current for unknown user", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := doJSON(t, h, http.MethodGet, "/current/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
