package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// stubProfileRepo serves the profiles the auth middleware resolves.
type stubProfileRepo struct {
	profiles map[string]*domain.Profile
}

func (r *stubProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return profile, nil
}

func (r *stubProfileRepo) Update(context.Context, *domain.Profile) error { return nil }

func (r *stubProfileRepo) UpdateRole(context.Context, string, domain.Role) error { return nil }

func (r *stubProfileRepo) List(context.Context, repository.ProfileFilter) ([]domain.Profile, error) {
	return nil, nil
}

func (r *stubProfileRepo) CountByRole(context.Context, domain.Role) (int, error) { return 0, nil }

// guardApp wires the real routes with real auth middleware and role
// guards, but no backing services. Denied requests never reach a
// handler, so the nil services are never touched.
func guardApp(t *testing.T) (*fiber.App, *auth.TokenManager, *observability.Metrics) {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret", 15)
	profiles := &stubProfileRepo{profiles: map[string]*domain.Profile{
		"user-1":  {ID: "user-1", FullName: "Plain User", Role: domain.RoleUser},
		"agent-1": {ID: "agent-1", FullName: "Ana Costa", Role: domain.RoleAgent},
		"admin-1": {ID: "admin-1", FullName: "Root Admin", Role: domain.RoleAdmin},
	}}

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Auth:           handlers.NewAuthHandler(nil, nil),
		Me:             handlers.NewMeHandler(nil),
		Tickets:        handlers.NewTicketsHandler(nil),
		StaffTickets:   handlers.NewStaffTicketsHandler(nil, nil),
		AdminUsers:     handlers.NewAdminUsersHandler(nil),
		Reports:        handlers.NewReportsHandler(nil),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, profiles),
	})
	return app, tokens, metrics
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, profileID string, role domain.Role) string {
	t.Helper()
	token, _, err := tokens.GenerateToken(profileID, role)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return token
}

func TestRoutesRejectMissingToken(t *testing.T) {
	app, _, _ := guardApp(t)

	for _, path := range []string{"/me", "/tickets", "/staff/tickets", "/admin/users"} {
		resp := doRequest(t, app, http.MethodGet, path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, resp.StatusCode)
		}
	}
}

func TestRoleGates(t *testing.T) {
	app, tokens, _ := guardApp(t)

	userToken := tokenFor(t, tokens, "user-1", domain.RoleUser)
	agentToken := tokenFor(t, tokens, "agent-1", domain.RoleAgent)
	adminToken := tokenFor(t, tokens, "admin-1", domain.RoleAdmin)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"user blocked from staff tickets", http.MethodGet, "/staff/tickets", userToken, http.StatusForbidden},
		{"user blocked from admin users", http.MethodGet, "/admin/users", userToken, http.StatusForbidden},
		{"user blocked from reports", http.MethodGet, "/admin/reports/overview", userToken, http.StatusForbidden},
		{"agent blocked from admin users", http.MethodGet, "/admin/users", agentToken, http.StatusForbidden},
		{"agent blocked from role change", http.MethodPatch, "/admin/users/user-1/role", agentToken, http.StatusForbidden},
		{"user reaches own profile", http.MethodGet, "/me", userToken, http.StatusOK},
		{"agent reaches own profile", http.MethodGet, "/me", agentToken, http.StatusOK},
		{"admin reaches own profile", http.MethodGet, "/me", adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, tc.method, tc.path, tc.token)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

// The stored role, not the token claim, decides access. A token minted
// before a demotion must not open staff routes.
func TestStaleRoleClaimDoesNotGrantAccess(t *testing.T) {
	app, tokens, _ := guardApp(t)

	staleToken := tokenFor(t, tokens, "user-1", domain.RoleAdmin)
	resp := doRequest(t, app, http.MethodGet, "/admin/users", staleToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected stale admin claim to be rejected, got %d", resp.StatusCode)
	}
}

func TestNavigationScopedToRole(t *testing.T) {
	app, tokens, _ := guardApp(t)

	resp := doRequest(t, app, http.MethodGet, "/me/navigation", tokenFor(t, tokens, "user-1", domain.RoleUser))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Data []struct {
			Title string `json:"title"`
			Path  string `json:"path"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Data) == 0 {
		t.Fatalf("expected navigation entries")
	}
	for _, item := range payload.Data {
		if item.Title == "Users" || item.Title == "Reports" {
			t.Fatalf("role user received staff entry %q", item.Title)
		}
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	app, _, _ := guardApp(t)

	resp := doRequest(t, app, http.MethodGet, "/me", "")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED code, got %q", payload.Error.Code)
	}
	if payload.Error.Message == "" {
		t.Fatalf("expected an error message")
	}
}

// Request counters must record the status the client received, not the
// pre-mapping default of a failed handler.
func TestRequestMetricsRecordMappedStatus(t *testing.T) {
	app, tokens, metrics := guardApp(t)

	resp := doRequest(t, app, http.MethodGet, "/me", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got := metrics.RequestCount("/me", http.MethodGet, http.StatusUnauthorized); got != 1 {
		t.Fatalf("expected one 401 recorded for /me, got %d", got)
	}
	if got := metrics.RequestCount("/me", http.MethodGet, http.StatusOK); got != 0 {
		t.Fatalf("a failed request must not be counted as 200, got %d", got)
	}

	resp = doRequest(t, app, http.MethodGet, "/me", tokenFor(t, tokens, "user-1", domain.RoleUser))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := metrics.RequestCount("/me", http.MethodGet, http.StatusOK); got != 1 {
		t.Fatalf("expected one 200 recorded for /me, got %d", got)
	}
}
