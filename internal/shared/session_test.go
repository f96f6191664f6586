package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", time.Hour, false), client
}

func TestLoadIgnoresUnknownCookieValue(t *testing.T) {
	sm, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "attacker-chosen-id"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen-id", sess.ID)
}

func TestRenewRotatesIDAndDropsOldKey(t *testing.T) {
	sm, client := newTestManager(t)
	ctx := context.Background()

	sess := sm.newSession()
	sess.Set("csrf_token", "abc")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	oldID := sess.ID
	require.NoError(t, sm.Renew(ctx, sess))

	assert.NotEqual(t, oldID, sess.ID)
	assert.Equal(t, "abc", sess.Get("csrf_token"))

	err := client.Get(ctx, "session:"+oldID).Err()
	assert.ErrorIs(t, err, redis.Nil)

	// the rotated session still round-trips through the store
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: sess.ID})
	reloaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, reloaded.ID)
	assert.Equal(t, "abc", reloaded.Get("csrf_token"))
}
