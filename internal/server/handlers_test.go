package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodshare/internal/config"
	"foodshare/internal/middleware"
	"foodshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.FoodItem{}, &models.FoodRequest{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		Env:            "test",
		AllowedOrigins: "http://localhost:5173",
	}

	// NewServerWithDeps wires the auth middleware config itself; relying on
	// that here keeps the construction path the tests exercise honest.
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

// request performs an app.Test round-trip with an optional JSON body and
// bearer token.
func request(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// issueToken obtains a session credential for the given email through the
// real auth endpoint.
func issueToken(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	resp := request(t, app, http.MethodPost, "/api/auth/token", "", fiber.Map{"email": email})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func createItem(t *testing.T, app *fiber.App, token, name string, quantity int) models.FoodItem {
	t.Helper()

	resp := request(t, app, http.MethodPost, "/api/foods", token, fiber.Map{
		"name":            name,
		"quantity":        quantity,
		"pickup_location": "Community Center",
		"expires_at":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.FoodItem
	decodeJSON(t, resp, &item)
	return item
}

func TestAuth(t *testing.T) {
	_, app := setupTestApp(t)

	t.Run("protected routes reject anonymous callers", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods/mine", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token issuance sets the session cookie", func(t *testing.T) {
		resp := request(t, app, http.MethodPost, "/api/auth/token", "", fiber.Map{
			"email": "donor@example.com",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var cookie string
		for _, c := range resp.Cookies() {
			if c.Name == middleware.TokenCookieName {
				cookie = c.Value
			}
		}
		assert.NotEmpty(t, cookie)
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		resp := request(t, app, http.MethodPost, "/api/auth/token", "", fiber.Map{
			"email": "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bearer token authenticates", func(t *testing.T) {
		token := issueToken(t, app, "donor@example.com")
		resp := request(t, app, http.MethodGet, "/api/foods/mine", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods/mine", "not.a.jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout expires the cookie", func(t *testing.T) {
		resp := request(t, app, http.MethodPost, "/api/auth/logout", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		for _, c := range resp.Cookies() {
			if c.Name == middleware.TokenCookieName {
				assert.True(t, c.Expires.Before(time.Now()))
			}
		}
	})
}

func TestDonationLifecycle(t *testing.T) {
	_, app := setupTestApp(t)

	donorToken := issueToken(t, app, "donor@example.com")
	requesterToken := issueToken(t, app, "requester@example.com")

	item := createItem(t, app, donorToken, "Bread", 2)
	assert.Equal(t, models.FoodStatusAvailable, item.Status)

	// The fresh item shows up in the public listing.
	resp := request(t, app, http.MethodGet, "/api/foods", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing []models.FoodItem
	decodeJSON(t, resp, &listing)
	require.Len(t, listing, 1)

	// A neighbor claims it.
	resp = request(t, app, http.MethodPost, "/api/requests", requesterToken, fiber.Map{
		"food_id": item.ID,
		"notes":   "Could pick up this evening",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.FoodRequest
	decodeJSON(t, resp, &created)
	assert.Equal(t, models.RequestStatusPending, created.Status)

	// Only the donor can review it.
	resp = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/requests/%d/approve", created.ID), requesterToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The donor approves; the request settles and the item leaves the pool.
	resp = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/requests/%d/approve", created.ID), donorToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.FoodRequest
	decodeJSON(t, resp, &approved)
	assert.Equal(t, models.RequestStatusApproved, approved.Status)

	resp = request(t, app, http.MethodGet, fmt.Sprintf("/api/foods/%d", item.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reloaded models.FoodItem
	decodeJSON(t, resp, &reloaded)
	assert.Equal(t, models.FoodStatusUnavailable, reloaded.Status)

	resp = request(t, app, http.MethodGet, "/api/foods", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &listing)
	assert.Empty(t, listing)

	// A settled request cannot be re-reviewed.
	resp = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/requests/%d/reject", created.ID), donorToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Claiming the now-unavailable item fails.
	resp = request(t, app, http.MethodPost, "/api/requests", requesterToken, fiber.Map{
		"food_id": item.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The donor completes the handover.
	resp = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/foods/%d/complete", item.ID), donorToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &reloaded)
	assert.Equal(t, models.FoodStatusCompleted, reloaded.Status)
}

func TestCreateRequestAgainstMissingItem(t *testing.T) {
	_, app := setupTestApp(t)
	token := issueToken(t, app, "requester@example.com")

	resp := request(t, app, http.MethodPost, "/api/requests", token, fiber.Map{
		"food_id": 9999,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Nothing was recorded for the phantom claim.
	resp = request(t, app, http.MethodGet, "/api/requests/mine", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var requests []models.FoodRequest
	decodeJSON(t, resp, &requests)
	assert.Empty(t, requests)
}

func TestUpdateFoodUpsert(t *testing.T) {
	_, app := setupTestApp(t)
	token := issueToken(t, app, "donor@example.com")

	body := fiber.Map{
		"name":            "Canned Soup",
		"quantity":        6,
		"pickup_location": "Food Bank",
		"expires_at":      time.Now().Add(96 * time.Hour).Format(time.RFC3339),
	}

	// Updating an id that does not resolve creates the item.
	resp := request(t, app, http.MethodPut, "/api/foods/42", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item models.FoodItem
	decodeJSON(t, resp, &item)
	assert.Equal(t, uint(42), item.ID)
	assert.Equal(t, models.FoodStatusAvailable, item.Status)

	// A second update replaces the stored fields.
	body["quantity"] = 3
	resp = request(t, app, http.MethodPut, "/api/foods/42", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &item)
	assert.Equal(t, 3, item.Quantity)

	// Another donor cannot take the item over.
	otherToken := issueToken(t, app, "other@example.com")
	resp = request(t, app, http.MethodPut, "/api/foods/42", otherToken, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteFoodIdempotent(t *testing.T) {
	_, app := setupTestApp(t)
	token := issueToken(t, app, "donor@example.com")

	item := createItem(t, app, token, "Milk", 1)

	resp := request(t, app, http.MethodDelete, fmt.Sprintf("/api/foods/%d", item.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Deleted int64 `json:"deleted"`
	}
	decodeJSON(t, resp, &result)
	assert.Equal(t, int64(1), result.Deleted)

	resp = request(t, app, http.MethodDelete, fmt.Sprintf("/api/foods/%d", item.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &result)
	assert.Equal(t, int64(0), result.Deleted)
}

func TestGetFoodsQueries(t *testing.T) {
	_, app := setupTestApp(t)
	token := issueToken(t, app, "donor@example.com")

	createItem(t, app, token, "Bread", 2)
	createItem(t, app, token, "Rye Bread", 5)
	createItem(t, app, token, "Milk", 9)

	t.Run("search narrows by word-anchored name match", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods?search=bread", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var items []models.FoodItem
		decodeJSON(t, resp, &items)
		require.Len(t, items, 2)

		for _, item := range items {
			assert.True(t, strings.Contains(strings.ToLower(item.Name), "bread"))
		}
	})

	t.Run("default listing sorts by quantity descending", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var items []models.FoodItem
		decodeJSON(t, resp, &items)
		require.Len(t, items, 3)
		assert.Equal(t, "Milk", items[0].Name)
	})

	t.Run("sort switches to expiry ordering", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods?sort=ascending", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var items []models.FoodItem
		decodeJSON(t, resp, &items)
		assert.Len(t, items, 3)
	})

	t.Run("mine is the donor's listing, not an id", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods/mine", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var items []models.FoodItem
		decodeJSON(t, resp, &items)
		assert.Len(t, items, 3)

		resp = request(t, app, http.MethodGet, "/api/foods/mine", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-numeric id is a validation error", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing id is NOT_FOUND", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/foods/9999", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		var errBody models.ErrorResponse
		decodeJSON(t, resp, &errBody)
		assert.Equal(t, "NOT_FOUND", errBody.Code)
	})
}

func TestRequestListings(t *testing.T) {
	_, app := setupTestApp(t)
	donorToken := issueToken(t, app, "donor@example.com")
	requesterToken := issueToken(t, app, "requester@example.com")

	item := createItem(t, app, donorToken, "Apples", 4)

	resp := request(t, app, http.MethodPost, "/api/requests", requesterToken, fiber.Map{
		"food_id": item.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.FoodRequest
	decodeJSON(t, resp, &created)

	t.Run("requester sees their own claims", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/requests/mine", requesterToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var requests []models.FoodRequest
		decodeJSON(t, resp, &requests)
		require.Len(t, requests, 1)
		require.NotNil(t, requests[0].Food)
		assert.Equal(t, "Apples", requests[0].Food.Name)
	})

	t.Run("donor sees incoming claims", func(t *testing.T) {
		resp := request(t, app, http.MethodGet, "/api/requests/incoming", donorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var requests []models.FoodRequest
		decodeJSON(t, resp, &requests)
		assert.Len(t, requests, 1)
	})

	t.Run("latest claim against an item", func(t *testing.T) {
		resp := request(t, app, http.MethodGet,
			fmt.Sprintf("/api/requests/food/%d", item.ID), donorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var found models.FoodRequest
		decodeJSON(t, resp, &found)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("single lookup is party-scoped", func(t *testing.T) {
		resp := request(t, app, http.MethodGet,
			fmt.Sprintf("/api/requests/%d", created.ID), requesterToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var found models.FoodRequest
		decodeJSON(t, resp, &found)
		assert.Equal(t, created.ID, found.ID)

		strangerToken := issueToken(t, app, "stranger@example.com")
		resp = request(t, app, http.MethodGet,
			fmt.Sprintf("/api/requests/%d", created.ID), strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = request(t, app, http.MethodGet, "/api/requests/9999", donorToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("requester withdraws a pending claim", func(t *testing.T) {
		resp := request(t, app, http.MethodDelete,
			fmt.Sprintf("/api/requests/%d", created.ID), requesterToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result struct {
			Deleted int64 `json:"deleted"`
		}
		decodeJSON(t, resp, &result)
		assert.Equal(t, int64(1), result.Deleted)
	})
}

func TestUnknownBodyFieldsRejected(t *testing.T) {
	_, app := setupTestApp(t)
	token := issueToken(t, app, "donor@example.com")

	t.Run("create food", func(t *testing.T) {
		resp := request(t, app, http.MethodPost, "/api/foods", token, fiber.Map{
			"name":            "Bread",
			"quantity":        2,
			"pickup_location": "Community Center",
			"expires_at":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
			"status":          "completed",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errBody models.ErrorResponse
		decodeJSON(t, resp, &errBody)
		assert.Equal(t, "VALIDATION_ERROR", errBody.Code)
	})

	t.Run("update cannot smuggle a status", func(t *testing.T) {
		item := createItem(t, app, token, "Milk", 1)

		resp := request(t, app, http.MethodPut, fmt.Sprintf("/api/foods/%d", item.ID), token, fiber.Map{
			"name":            "Milk",
			"quantity":        1,
			"pickup_location": "Community Center",
			"expires_at":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
			"status":          "unavailable",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		// The rejected payload moved nothing.
		resp = request(t, app, http.MethodGet, fmt.Sprintf("/api/foods/%d", item.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var reloaded models.FoodItem
		decodeJSON(t, resp, &reloaded)
		assert.Equal(t, models.FoodStatusAvailable, reloaded.Status)
	})

	t.Run("create request", func(t *testing.T) {
		item := createItem(t, app, token, "Rice", 4)
		resp := request(t, app, http.MethodPost, "/api/requests", token, fiber.Map{
			"food_id":  item.ID,
			"priority": "high",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("token issuance", func(t *testing.T) {
		resp := request(t, app, http.MethodPost, "/api/auth/token", "", fiber.Map{
			"email": "donor@example.com",
			"admin": true,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	_, app := setupTestApp(t)

	resp := request(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
