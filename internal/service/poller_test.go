package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bundlehub-client/internal/api"
	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPoller(t *testing.T, backendURL string, interval time.Duration) (*OrderPoller, *session.Store, cache.Cache) {
	t.Helper()

	tokens := session.NewStore(context.Background(), session.NoopMirror{}, zap.NewNop())
	client, err := api.New(backendURL, 5*time.Second, tokens, zap.NewNop())
	require.NoError(t, err)

	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	return NewOrderPoller(client, tokens, c, interval, time.Minute, zap.NewNop()), tokens, c
}

func TestOrderPoller_FetchesImmediatelyAndOnInterval(t *testing.T) {
	ctx := context.Background()
	var fetches int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/o1", r.URL.Path)
		atomic.AddInt32(&fetches, 1)
		w.Write([]byte(`{"id":"o1","status":"processing"}`))
	}))
	defer backend.Close()

	poller, tokens, c := newTestPoller(t, backend.URL, 20*time.Millisecond)
	tokens.Set(ctx, "tok")

	stop := poller.Watch(ctx, "o1", true)
	defer stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetches) >= 3
	}, time.Second, 5*time.Millisecond, "immediate fetch plus interval ticks")

	raw, err := c.Get(ctx, cache.OrderKey("o1"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "processing")
}

func TestOrderPoller_StopsCleanly(t *testing.T) {
	ctx := context.Background()
	var fetches int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Write([]byte(`{"id":"o1","status":"pending"}`))
	}))
	defer backend.Close()

	poller, tokens, _ := newTestPoller(t, backend.URL, 20*time.Millisecond)
	tokens.Set(ctx, "tok")

	stop := poller.Watch(ctx, "o1", true)
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetches) >= 1
	}, time.Second, 5*time.Millisecond)

	stop()
	stop() // idempotent

	settled := atomic.LoadInt32(&fetches)
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&fetches)-settled, int32(1),
		"no further ticks after stop beyond one already in flight")
}

func TestOrderPoller_DisabledOrAbsentIDNeverFetches(t *testing.T) {
	ctx := context.Background()
	var fetches int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
	}))
	defer backend.Close()

	poller, tokens, _ := newTestPoller(t, backend.URL, 10*time.Millisecond)
	tokens.Set(ctx, "tok")

	stopDisabled := poller.Watch(ctx, "o1", false)
	stopEmpty := poller.Watch(ctx, "", true)
	defer stopDisabled()
	defer stopEmpty()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fetches))
}

func TestOrderPoller_SkipsSilentlyWithoutCredential(t *testing.T) {
	ctx := context.Background()
	var fetches int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
	}))
	defer backend.Close()

	poller, _, _ := newTestPoller(t, backend.URL, 10*time.Millisecond)

	stop := poller.Watch(ctx, "o1", true)
	defer stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fetches), "no polling without a token")
}

func TestOrderPoller_InvalidatesOrdersListOnFetch(t *testing.T) {
	ctx := context.Background()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"o1","status":"completed"}`))
	}))
	defer backend.Close()

	poller, tokens, c := newTestPoller(t, backend.URL, 20*time.Millisecond)
	tokens.Set(ctx, "tok")

	require.NoError(t, c.Set(ctx, cache.MyOrdersPrefix+"1:10", []byte(`{}`), time.Minute))

	stop := poller.Watch(ctx, "o1", true)
	defer stop()

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, cache.MyOrdersPrefix+"1:10")
		return err == cache.ErrCacheMiss
	}, time.Second, 5*time.Millisecond, "my-orders pages must be invalidated")
}

func TestOrderPoller_FetchFailureDoesNotStopTicks(t *testing.T) {
	ctx := context.Background()
	var fetches int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		atomic.AddInt32(&fetches, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	poller, tokens, _ := newTestPoller(t, backend.URL, 20*time.Millisecond)
	tokens.Set(ctx, "tok")

	stop := poller.Watch(ctx, "o1", true)
	defer stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetches) >= 3
	}, time.Second, 5*time.Millisecond, "next scheduled tick still fires after an error")
}
