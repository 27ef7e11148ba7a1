package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"eventdesk/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (domain.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client), mr
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "tok-1",
		UserID:    "user-uuid-1",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "user-uuid-1", got.UserID)
	require.Equal(t, "alice@example.com", got.Email)

	ttl := mr.TTL(sessionKey("tok-1"))
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Hour)
}

func TestSessionStore_CreateExpiredIsNotStored(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "tok-stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Create(ctx, session))
	require.False(t, mr.Exists(sessionKey("tok-stale")))
}

func TestSessionStore_GetUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "tok-missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_GetAfterTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "tok-short",
		UserID:    "user-uuid-1",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, store.Create(ctx, session))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-short")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		Token:     "tok-1",
		UserID:    "user-uuid-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, session))
	require.True(t, mr.Exists(sessionKey("tok-1")))

	require.NoError(t, store.Delete(ctx, "tok-1"))
	require.False(t, mr.Exists(sessionKey("tok-1")))

	// Deleting a token that does not exist is not an error.
	require.NoError(t, store.Delete(ctx, "tok-1"))
}

func TestSessionStore_DeleteExpiredIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	n, err := store.DeleteExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}
