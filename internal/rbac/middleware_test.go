package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/rbac"
	"github.com/warungpos/warungpos/internal/shared"
)

type stubPermissions struct {
	granted []string
	err     error
}

func (s stubPermissions) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.granted, s.err
}

func requestWithUser(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/apps/categories", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireAnyGrantsMatchingPermission(t *testing.T) {
	gate := rbac.Middleware{Service: stubPermissions{granted: []string{"categories.index"}}}
	called := false
	handler := gate.RequireAny(shared.PermCategoriesIndex)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser(t, "7"))

	require.True(t, called)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRequireAnyRejectsMissingPermission(t *testing.T) {
	gate := rbac.Middleware{Service: stubPermissions{granted: []string{"products.index"}}}
	handler := gate.RequireAny(shared.PermCategoriesIndex)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser(t, "7"))

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	gate := rbac.Middleware{Service: stubPermissions{granted: []string{"categories.index"}}}
	handler := gate.RequireAny(shared.PermCategoriesIndex)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser(t, ""))

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyMatchesAlternation(t *testing.T) {
	gate := rbac.Middleware{Service: stubPermissions{granted: []string{"categories.delete"}}}
	handler := gate.RequireAny(
		shared.PermCategoriesIndex,
		shared.PermCategoriesCreate,
		shared.PermCategoriesEdit,
		shared.PermCategoriesDelete,
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestWithUser(t, "7"))

	require.Equal(t, http.StatusOK, res.Code)
}
