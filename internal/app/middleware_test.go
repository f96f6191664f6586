package app

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/internal/view"
)

func newStackRouter(t *testing.T) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := shared.NewSessionManager(client, "test_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")
	engine, err := view.NewEngine("test")
	require.NoError(t, err)

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         logger,
		Config:         &Config{AppRequestTimeout: 5 * time.Second},
		SessionManager: sessions,
		CSRFManager:    csrf,
	}) {
		r.Use(mw)
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		_ = engine.Render(w, req, http.StatusOK, "Auth/Login", nil)
	})
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// loads the login page and returns the session cookie plus the token
// delivered in the page props
func fetchSession(t *testing.T, router http.Handler) (*http.Cookie, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Inertia", "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Props map[string]any `json:"props"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	token, _ := page.Props["csrf_token"].(string)
	require.NotEmpty(t, token)

	res := rec.Result()
	defer res.Body.Close()
	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "test_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	return cookie, token
}

func TestLoginPageDeliversCSRFToken(t *testing.T) {
	router := newStackRouter(t)
	cookie, token := fetchSession(t, router)

	form := url.Values{}
	form.Set(shared.CSRFFormField, token)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMutatingRequestWithoutTokenRejected(t *testing.T) {
	router := newStackRouter(t)
	cookie, _ := fetchSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTokenAcceptedFromHeader(t *testing.T) {
	router := newStackRouter(t)
	cookie, token := fetchSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
