package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "vt_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetEmployee("42")
	sess.SetCompany(7)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "42", loaded.Employee())
	require.Equal(t, int64(7), loaded.Company())
}

func TestFlashSurvivesExactlyOneCommit(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "error", Message: "network error"})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "network error", flash.Message)

	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, next, loaded))
	again, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Nil(t, again.PopFlash())
}
