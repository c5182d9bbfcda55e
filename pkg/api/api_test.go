package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pantrypal/pkg/auth"
	"pantrypal/pkg/events"
	"pantrypal/pkg/health"
	"pantrypal/pkg/pantry"
	"pantrypal/pkg/recipes"
	"pantrypal/pkg/storage"
	"pantrypal/pkg/token"
)

func newTestServer(t *testing.T) (*httptest.Server, storage.Store) {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := token.NewManager(token.Config{
		Secret:     "0123456789abcdef0123456789abcdef",
		Issuer:     "pantrypal",
		Audience:   "pantrypal-web",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create token manager: %v", err)
	}

	authSvc := auth.NewService(auth.Config{RotateRefresh: true}, store, tokens, auth.NewMemorySessionStore())
	hub := events.NewHub()
	pantrySvc := pantry.NewService(store, hub, 3)
	recipeSvc := recipes.NewService(store)

	handler := NewHandler(authSvc, pantrySvc, recipeSvc, hub, health.NewMonitor())
	srv := httptest.NewServer(SetupRouter(handler, "*"))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, bearer string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func signup(t *testing.T, base, email string) *token.Pair {
	t.Helper()
	resp, fields := doJSON(t, http.MethodPost, base+"/api/auth/signup", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "correct horse battery",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Signup: expected 201, got %d", resp.StatusCode)
	}
	var pair token.Pair
	if err := json.Unmarshal(fields["tokens"], &pair); err != nil {
		t.Fatalf("Failed to decode tokens: %v", err)
	}
	return &pair
}

func TestSignupLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	pair := signup(t, srv.URL, "ana@example.com")
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Expected a full token pair from signup")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("Expected Bearer token type, got %q", pair.TokenType)
	}

	// Duplicate email
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"email": "ana@example.com", "password": "correct horse battery",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Duplicate signup: expected 409, got %d", resp.StatusCode)
	}

	// Login with the right password
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "correct horse battery",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Login: expected 200, got %d", resp.StatusCode)
	}

	// Wrong password
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Bad login: expected 401, got %d", resp.StatusCode)
	}
}

func TestWeakPasswordRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"email": "bob@example.com", "password": "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Weak password: expected 400, got %d", resp.StatusCode)
	}
}

func TestSessionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	pair := signup(t, srv.URL, "ana@example.com")

	resp, fields := doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", pair.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Session: expected 200, got %d", resp.StatusCode)
	}
	var email string
	json.Unmarshal(fields["email"], &email)
	if email != "ana@example.com" {
		t.Errorf("Expected session email ana@example.com, got %q", email)
	}
	var soon bool
	json.Unmarshal(fields["expiring_soon"], &soon)
	if soon {
		t.Error("Fresh session should not be expiring soon")
	}

	// No token
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("No token: expected 401, got %d", resp.StatusCode)
	}

	// Garbage token
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", "not.a.token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Garbage token: expected 401, got %d", resp.StatusCode)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	pair := signup(t, srv.URL, "ana@example.com")

	resp, fields := doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Refresh: expected 200, got %d", resp.StatusCode)
	}
	var rotated string
	json.Unmarshal(fields["refresh_token"], &rotated)
	if rotated == "" || rotated == pair.RefreshToken {
		t.Error("Expected a rotated refresh token")
	}

	// The old refresh token is now revoked
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Replayed refresh: expected 401, got %d", resp.StatusCode)
	}

	// Logout the rotated session, then it cannot refresh either
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", "", map[string]string{
		"refresh_token": rotated,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Logout: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", map[string]string{
		"refresh_token": rotated,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Refresh after logout: expected 401, got %d", resp.StatusCode)
	}
}

func TestPantryCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	pair := signup(t, srv.URL, "ana@example.com")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	nextMonth := time.Now().AddDate(0, 1, 0).Format("2006-01-02")

	resp, fields := doJSON(t, http.MethodPost, srv.URL+"/api/pantry", pair.AccessToken, map[string]interface{}{
		"name": "Milk", "category": "dairy", "quantity": 1.5, "unit": "l", "expiry_date": tomorrow,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Add item: expected 201, got %d", resp.StatusCode)
	}
	var itemID, status, display string
	json.Unmarshal(fields["id"], &itemID)
	json.Unmarshal(fields["status"], &status)
	json.Unmarshal(fields["display_quantity"], &display)
	if status != pantry.StatusExpiringSoon {
		t.Errorf("Expected expiring_soon status, got %q", status)
	}
	if display != "1.5 l" {
		t.Errorf("Expected display quantity %q, got %q", "1.5 l", display)
	}

	doJSON(t, http.MethodPost, srv.URL+"/api/pantry", pair.AccessToken, map[string]interface{}{
		"name": "Rice", "category": "grains", "quantity": 2.0, "unit": "kg", "expiry_date": nextMonth,
	})

	// List, then filter by category
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/pantry", pair.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("List items: expected 200, got %d", resp.StatusCode)
	}
	resp2, err := http.Get(srv.URL + "/api/pantry?category=dairy&token=" + pair.AccessToken)
	if err != nil {
		t.Fatalf("Category filter request failed: %v", err)
	}
	defer resp2.Body.Close()
	var filtered []ItemResponse
	json.NewDecoder(resp2.Body).Decode(&filtered)
	if len(filtered) != 1 || filtered[0].Name != "Milk" {
		t.Errorf("Expected only Milk in dairy, got %+v", filtered)
	}

	// Expiring window only catches the milk
	resp3, err := http.Get(srv.URL + "/api/pantry/expiring?days=3&token=" + pair.AccessToken)
	if err != nil {
		t.Fatalf("Expiring request failed: %v", err)
	}
	defer resp3.Body.Close()
	var expiring []ItemResponse
	json.NewDecoder(resp3.Body).Decode(&expiring)
	if len(expiring) != 1 || expiring[0].Name != "Milk" {
		t.Errorf("Expected only Milk expiring, got %+v", expiring)
	}

	// Update
	resp, fields = doJSON(t, http.MethodPut, srv.URL+"/api/pantry/"+itemID, pair.AccessToken, map[string]interface{}{
		"name": "Whole Milk", "category": "dairy", "quantity": 1.0, "unit": "l", "expiry_date": nextMonth,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Update item: expected 200, got %d", resp.StatusCode)
	}
	var updatedName string
	json.Unmarshal(fields["name"], &updatedName)
	if updatedName != "Whole Milk" {
		t.Errorf("Expected updated name, got %q", updatedName)
	}

	// Delete, then 404
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/pantry/"+itemID, pair.AccessToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Delete item: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/pantry/"+itemID, pair.AccessToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Get deleted item: expected 404, got %d", resp.StatusCode)
	}

	// Bad date format
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/pantry", pair.AccessToken, map[string]interface{}{
		"name": "Eggs", "expiry_date": "not-a-date",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Bad date: expected 400, got %d", resp.StatusCode)
	}
}

func TestPantryIsolationBetweenUsers(t *testing.T) {
	srv, _ := newTestServer(t)
	ana := signup(t, srv.URL, "ana@example.com")
	bob := signup(t, srv.URL, "bob@example.com")

	expiry := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	_, fields := doJSON(t, http.MethodPost, srv.URL+"/api/pantry", ana.AccessToken, map[string]interface{}{
		"name": "Milk", "quantity": 1.0, "expiry_date": expiry,
	})
	var itemID string
	json.Unmarshal(fields["id"], &itemID)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/pantry/"+itemID, bob.AccessToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Cross-user access: expected 404, got %d", resp.StatusCode)
	}
}

func TestRecipeMatches(t *testing.T) {
	srv, _ := newTestServer(t)
	pair := signup(t, srv.URL, "ana@example.com")

	expiry := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	for _, name := range []string{"Butter", "Flour"} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/pantry", pair.AccessToken, map[string]interface{}{
			"name": name, "quantity": 1.0, "expiry_date": expiry,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Add %s: expected 201, got %d", name, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/recipes", pair.AccessToken, map[string]interface{}{
		"title":    "Roux",
		"servings": 4,
		"ingredients": []map[string]interface{}{
			{"name": "butter", "quantity": 50, "unit": "g"},
			{"name": "flour", "quantity": 50, "unit": "g"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create recipe: expected 201, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/recipes", pair.AccessToken, map[string]interface{}{
		"title": "Pancakes",
		"ingredients": []map[string]interface{}{
			{"name": "flour"}, {"name": "milk"}, {"name": "eggs"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create recipe: expected 201, got %d", resp.StatusCode)
	}

	res, err := http.Get(srv.URL + "/api/recipes/matches?token=" + pair.AccessToken)
	if err != nil {
		t.Fatalf("Matches request failed: %v", err)
	}
	defer res.Body.Close()
	var matches []MatchResponse
	if err := json.NewDecoder(res.Body).Decode(&matches); err != nil {
		t.Fatalf("Failed to decode matches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Recipe.Title != "Roux" || matches[0].MatchPercent != 100 {
		t.Errorf("Expected Roux at 100%%, got %s at %d%%", matches[0].Recipe.Title, matches[0].MatchPercent)
	}
	if matches[1].MatchPercent != 33 {
		t.Errorf("Expected Pancakes at 33%%, got %d%%", matches[1].MatchPercent)
	}
	if len(matches[1].Missing) != 2 {
		t.Errorf("Expected 2 missing ingredients, got %v", matches[1].Missing)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Health: expected 200, got %d", res.StatusCode)
	}
	var h health.ServerHealth
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if h.Status != health.StatusHealthy {
		t.Errorf("Expected healthy, got %s", h.Status)
	}
}

func TestProtectedRoutesRejectRefreshToken(t *testing.T) {
	srv, _ := newTestServer(t)
	pair := signup(t, srv.URL, "ana@example.com")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/pantry", pair.RefreshToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Refresh token as bearer: expected 401, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/pantry", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Preflight request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("Preflight: expected 204, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}
