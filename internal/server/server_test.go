package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"

	"newsreview/internal/config"
	"newsreview/internal/review"
	"newsreview/internal/testutil"
)

// TestEncryptCookieSessionRoundTrip verifies that the encryptcookie +
// session middleware stack does not panic when a client replays encrypted
// session cookies across multiple requests. Review sessions are keyed by
// the session ID, so a broken round trip would lose the operator's place.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	// Use the same key-derivation as production (deriveEncryptionKey).
	secret := "test-secret-that-is-long-enough-for-production"
	encryptionKey := deriveEncryptionKey(secret)

	app := fiber.New()

	// Mirror the production middleware order exactly:
	// 1. encryptcookie  2. session  3. route handler
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: encryptionKey,
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	// Handler that writes a session value on POST and reads it on GET.
	app.Post("/session-set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		sess.Set("position", "2")
		return c.SendString("ok")
	})
	app.Get("/session-get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		val, _ := sess.Get("position").(string)
		return c.SendString(val)
	})

	// --- Request 1: establish a session ---
	req, _ := http.NewRequest("POST", "/session-set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request 1 failed: %v", err)
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("request 1: expected 200, got %d: %s", resp.StatusCode, body)
	}

	// Collect Set-Cookie headers from the response.
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("request 1: no cookies returned")
	}

	// --- Request 2: replay cookies (triggers encryptcookie decryption) ---
	req2, _ := http.NewRequest("GET", "/session-get", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}

	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request 2 failed (possible encryptcookie panic): %v", err)
	}
	body, _ := io.ReadAll(resp2.Body)
	if resp2.StatusCode != 200 {
		t.Fatalf("request 2: expected 200, got %d: %s", resp2.StatusCode, body)
	}
	if string(body) != "2" {
		t.Errorf("request 2: expected session value '2', got %q", body)
	}

	// --- Request 3: one more round-trip to confirm stability ---
	cookies2 := resp2.Cookies()
	req3, _ := http.NewRequest("GET", "/session-get", nil)
	// Use cookies from resp2 if present, otherwise fall back to original.
	replayCookies := cookies2
	if len(replayCookies) == 0 {
		replayCookies = cookies
	}
	for _, c := range replayCookies {
		req3.AddCookie(c)
	}

	resp3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("request 3 failed: %v", err)
	}
	body3, _ := io.ReadAll(resp3.Body)
	if resp3.StatusCode != 200 {
		t.Fatalf("request 3: expected 200, got %d: %s", resp3.StatusCode, body3)
	}
	if string(body3) != "2" {
		t.Errorf("request 3: expected session value '2', got %q", body3)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Env:              "development",
		BaseURL:          "http://localhost:3000",
		SessionSecret:    "test-secret-that-is-long-enough-for-production",
		ReviewSessionTTL: time.Hour,
		SiteTitle:        "Newsletter Review",
	}
}

func newTestServer(t *testing.T, store *testutil.MemoryStore) *Server {
	t.Helper()

	logger := zap.NewNop()
	srv := New(testConfig(), logger, Options{ViewsDir: "../../views", StaticDir: "../../static"})
	sessions := review.NewRegistry(time.Hour, func() *review.Session {
		return review.NewSession(store, store, review.NewWorkflow(store, store, logger), logger)
	})
	srv.RegisterRoutes(sessions, store, &config.YAMLConfig{SuggestedCategories: []string{"tech"}})
	return srv
}

func seededStore() *testutil.MemoryStore {
	store := testutil.NewMemoryStore()
	store.AddSubmission(1, "alpha", "tech")
	store.AddSubmission(2, "beta", "ai")
	store.AddPublished(10, "Tech Weekly", "tech")
	return store
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, string(body)
}

func TestOperationalRoutes(t *testing.T) {
	store := seededStore()
	srv := newTestServer(t, store)

	resp, body := send(t, srv.App, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"database":"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	resp, body = send(t, srv.App, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "go_goroutines") {
		t.Errorf("metrics = %d", resp.StatusCode)
	}

	resp, _ = send(t, srv.App, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static = %d", resp.StatusCode)
	}
}

func TestIndexRendersLayout(t *testing.T) {
	srv := newTestServer(t, seededStore())

	resp, body := send(t, srv.App, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"<html", "Newsletter Review", "alpha", "Submission 1 of 2", "Tech Weekly"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestNotFoundResponses(t *testing.T) {
	srv := newTestServer(t, seededStore())

	resp, body := send(t, srv.App, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("api status = %d", resp.StatusCode)
	}
	var env map[string]string
	if err := json.Unmarshal([]byte(body), &env); err != nil || env["status"] != "error" {
		t.Errorf("api body = %s", body)
	}

	resp, body = send(t, srv.App, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("html status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Back to review") {
		t.Errorf("html body should render the error page, got %s", body)
	}
}

// Each browser session gets its own review position.
func TestReviewSessionFollowsCookie(t *testing.T) {
	srv := newTestServer(t, seededStore())

	resp, _ := send(t, srv.App, httptest.NewRequest(http.MethodGet, "/api/v1/review", nil))
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie returned")
	}

	next := httptest.NewRequest(http.MethodPost, "/api/v1/review/next", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	resp, body := send(t, srv.App, next)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"index":1`) {
		t.Fatalf("next = %d %s", resp.StatusCode, body)
	}

	same := httptest.NewRequest(http.MethodGet, "/api/v1/review", nil)
	for _, c := range cookies {
		same.AddCookie(c)
	}
	_, body = send(t, srv.App, same)
	if !strings.Contains(body, `"index":1`) {
		t.Errorf("same session lost its position: %s", body)
	}

	_, body = send(t, srv.App, httptest.NewRequest(http.MethodGet, "/api/v1/review", nil))
	if !strings.Contains(body, `"index":0`) {
		t.Errorf("new session should start at the first submission: %s", body)
	}
}
