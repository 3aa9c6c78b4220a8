package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bundlehub-client/internal/model"
	"bundlehub-client/internal/session"
	"bundlehub-client/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, backendURL string) (*Client, *session.Store) {
	t.Helper()
	tokens := session.NewStore(context.Background(), session.NoopMirror{}, zap.NewNop())
	client, err := New(backendURL, 5*time.Second, tokens, zap.NewNop())
	require.NoError(t, err)
	return client, tokens
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "tok-123")

	_, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	var productCalls, refreshCalls int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			assert.Empty(t, r.Header.Get("Authorization"), "refresh must carry no bearer header")
			json.NewEncoder(w).Encode(map[string]string{"accessToken": "fresh-token"})
		case "/api/products":
			atomic.AddInt32(&productCalls, 1)
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[{"id":"p1","name":"Bundle","network":"MTN","dataAmount":"2GB","price":10}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "stale-token")

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)

	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "exactly one refresh")
	assert.Equal(t, int32(2), atomic.LoadInt32(&productCalls), "exactly one retry")
	assert.Equal(t, "fresh-token", tokens.Get(), "refreshed token must be stored")
}

func TestClient_FailedRefreshReturnsOriginal401(t *testing.T) {
	var productCalls, refreshCalls int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		case "/api/products":
			atomic.AddInt32(&productCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"session expired"}`))
		}
	}))
	defer backend.Close()

	client, _ := newTestClient(t, backend.URL)

	_, err := client.Products(context.Background())
	require.Error(t, err)
	assert.True(t, apierror.IsUnauthorized(err), "caller sees the original 401")
	assert.EqualError(t, err, "session expired")

	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "no second refresh attempt")
	assert.Equal(t, int32(1), atomic.LoadInt32(&productCalls), "no retry after failed refresh")
}

func TestClient_RefreshYieldingNoTokenReturnsOriginal401(t *testing.T) {
	var productCalls int32

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/refresh":
			w.Write([]byte(`{}`))
		case "/api/products":
			atomic.AddInt32(&productCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer backend.Close()

	client, _ := newTestClient(t, backend.URL)

	_, err := client.Products(context.Background())
	require.Error(t, err)
	assert.True(t, apierror.IsUnauthorized(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&productCalls))
}

func TestClient_LoginStoresToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)

		var creds model.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "kofi", creds.Identifier)

		json.NewEncoder(w).Encode(model.AuthResponse{
			User:        model.User{ID: "u1", Username: "kofi", Role: model.RoleUser},
			AccessToken: "tok-login",
		})
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)

	resp, err := client.Login(context.Background(), model.Credentials{Identifier: "kofi", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, "tok-login", tokens.Get())
}

func TestClient_LoginFailureSurfacesMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid username or password"}`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)

	_, err := client.Login(context.Background(), model.Credentials{Identifier: "kofi", Password: "wrong"})
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid username or password")
	assert.Empty(t, tokens.Get())
}

func TestClient_MeUnwrapsArrayResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"u1","username":"kofi","role":"agent","isVerified":true,"balance":25.5}]`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "tok")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "kofi", user.Username)
	assert.Equal(t, model.RoleAgent, user.Role)
	assert.Equal(t, 25.5, user.Balance)
}

func TestClient_MeEmptyArrayMeansNoIdentity(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "tok")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClient_MyOrdersNormalizesBareArray(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"id":"o1","status":"pending"},{"id":"o2","status":"completed"}]`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "tok")

	page, err := client.MyOrders(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestClient_CreateOrderPlacesDirectOrder(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var order model.NewOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, "p1", order.ProductID)

		w.Write([]byte(`{"id":"o1","productId":"p1","status":"pending"}`))
	}))
	defer backend.Close()

	client, tokens := newTestClient(t, backend.URL)
	tokens.Set(context.Background(), "tok")

	order, err := client.CreateOrder(context.Background(), model.NewOrder{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, model.OrderPending, order.Status)
}

func TestClient_TryRefreshSwallowsNetworkFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(nil))
	backend.Close() // dead endpoint

	client, tokens := newTestClient(t, backend.URL)

	assert.False(t, client.TryRefresh(context.Background()))
	assert.Empty(t, tokens.Get())
}
