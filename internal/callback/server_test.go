package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bundlehub-client/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentReturnInvalidatesCaches(t *testing.T) {
	ctx := context.Background()

	c := cache.NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, cache.KeyCart, []byte(`[]`), time.Minute))
	require.NoError(t, c.Set(ctx, cache.KeyUser, []byte(`{}`), time.Minute))
	require.NoError(t, c.Set(ctx, cache.MyOrdersPrefix+"1:10", []byte(`{}`), time.Minute))
	require.NoError(t, c.Set(ctx, cache.OrderKey("o1"), []byte(`{}`), time.Minute))

	srv := New("127.0.0.1:0", c, zap.NewNop())
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/payment/return?reference=ref-123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = c.Get(ctx, cache.KeyCart)
	assert.Equal(t, cache.ErrCacheMiss, err)
	_, err = c.Get(ctx, cache.KeyUser)
	assert.Equal(t, cache.ErrCacheMiss, err)
	_, err = c.Get(ctx, cache.MyOrdersPrefix+"1:10")
	assert.Equal(t, cache.ErrCacheMiss, err)

	_, err = c.Get(ctx, cache.OrderKey("o1"))
	assert.NoError(t, err, "single-order entries are left for the poller to refresh")
}

func TestHealthz(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()

	srv := New("127.0.0.1:0", c, zap.NewNop())
	ts := httptest.NewServer(srv.srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
