package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bundlehub-client/internal/api"
	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/model"
	"bundlehub-client/internal/session"
	"bundlehub-client/pkg/apierror"

	"go.uber.org/zap"
)

// Storefront composes the backend client, token store, cart store and syncer
// and drives the identity transitions between them. An expired or missing
// session falls back to guest behavior silently rather than surfacing a
// "session expired" failure.
type Storefront struct {
	api      *api.Client
	tokens   *session.Store
	cart     *CartStore
	sync     *Syncer
	cache    cache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewStorefront wires the storefront facade.
func NewStorefront(apiClient *api.Client, tokens *session.Store, cart *CartStore, syncer *Syncer, c cache.Cache, cacheTTL time.Duration, log *zap.Logger) *Storefront {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Storefront{
		api:      apiClient,
		tokens:   tokens,
		cart:     cart,
		sync:     syncer,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Cart exposes the session-scoped local cart store.
func (s *Storefront) Cart() *CartStore { return s.cart }

// API exposes the raw backend client for pass-through calls.
func (s *Storefront) API() *api.Client { return s.api }

// Resolve determines the current identity and switches the cart scope to
// match. With no token held it attempts one silent refresh via the refresh
// cookie; if that fails the client stays a guest. Returns nil without error
// when unauthenticated.
func (s *Storefront) Resolve(ctx context.Context) (*model.User, error) {
	if s.tokens.Get() == "" {
		s.api.TryRefresh(ctx)
	}
	if s.tokens.Get() == "" {
		s.cart.SetIdentity(ctx, "")
		return nil, nil
	}

	user, err := s.api.Me(ctx)
	if apierror.IsUnauthorized(err) {
		s.tokens.Clear(ctx)
		s.cart.SetIdentity(ctx, "")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.cart.SetIdentity(ctx, "")
		return nil, nil
	}

	s.cart.SetIdentity(ctx, user.ID)
	return user, nil
}

// Login authenticates, migrates the pending bucket to the server cart and
// switches the cart scope to the new user.
func (s *Storefront) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := s.sync.MigratePending(ctx, resp.User.ID); err != nil {
		// Login itself succeeded; staged entries stay in the bucket for retry.
		s.log.Warn("failed to push pending cart after login", zap.Error(err))
	}

	s.cart.SetIdentity(ctx, resp.User.ID)
	s.invalidateIdentityCaches(ctx)
	return &resp.User, nil
}

// Register creates an account and switches the cart scope to the new user.
func (s *Storefront) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	resp, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}

	s.cart.SetIdentity(ctx, resp.User.ID)
	s.invalidateIdentityCaches(ctx)
	return &resp.User, nil
}

// Logout ends the session and drops back to the guest cart scope.
func (s *Storefront) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}

	s.cart.SetIdentity(ctx, "")
	s.invalidateIdentityCaches(ctx)
	return nil
}

// AddToCart adds to the server cart. An unauthorized response stages the
// entry in the pending bucket instead of failing, so browsing before login
// keeps working.
func (s *Storefront) AddToCart(ctx context.Context, req model.CartAddRequest) error {
	err := s.api.CartAdd(ctx, req)
	if apierror.IsUnauthorized(err) {
		s.sync.StagePending(ctx, model.PendingEntry{
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			PhoneNumber: req.PhoneNumber,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, cache.KeyCart); err != nil {
		s.log.Warn("failed to invalidate cart cache", zap.Error(err))
	}
	return nil
}

// ServerCart fetches the server cart. For an unauthenticated client the
// pending bucket is joined against the product catalog so staged entries
// still display.
func (s *Storefront) ServerCart(ctx context.Context) ([]model.ServerCartLine, error) {
	lines, err := s.api.Cart(ctx)
	if err == nil {
		return lines, nil
	}
	if !apierror.IsUnauthorized(err) {
		return nil, err
	}

	entries := s.sync.PendingEntries(ctx)
	if len(entries) == 0 {
		return nil, nil
	}

	products, err := s.api.Products(ctx)
	if err != nil {
		return nil, nil
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var result []model.ServerCartLine
	for _, entry := range entries {
		if p, ok := byID[entry.ProductID]; ok {
			result = append(result, model.ServerCartLine{Product: p, Quantity: entry.Quantity})
		}
	}
	return result, nil
}

// Checkout requires an authenticated identity; local lines are synced to the
// server cart first and kept on any sync failure.
func (s *Storefront) Checkout(ctx context.Context, paymentMethod string) (*model.CheckoutResult, error) {
	if s.tokens.Get() == "" {
		return nil, apierror.Unauthorized("login required for checkout")
	}
	return s.sync.Checkout(ctx, paymentMethod)
}

// MyOrders returns one cached page of the current user's orders.
func (s *Storefront) MyOrders(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	key := fmt.Sprintf("%s%d:%d", cache.MyOrdersPrefix, page, limit)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached model.OrderPage
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := s.api.MyOrders(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache orders page", zap.Error(err))
		}
	}
	return result, nil
}

// GetOrder returns an order, served from cache when the poller has a fresh
// entry.
func (s *Storefront) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if raw, err := s.cache.Get(ctx, cache.OrderKey(orderID)); err == nil {
		var cached model.Order
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	order, err := s.api.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(order); err == nil {
		if err := s.cache.Set(ctx, cache.OrderKey(orderID), raw, s.cacheTTL); err != nil {
			s.log.Warn("failed to cache order", zap.Error(err))
		}
	}
	return order, nil
}

// invalidateIdentityCaches drops the cached user, cart and order views after
// an identity transition.
func (s *Storefront) invalidateIdentityCaches(ctx context.Context) {
	for _, key := range []string{cache.KeyUser, cache.KeyCart} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache entry", zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.cache.DeletePrefix(ctx, cache.MyOrdersPrefix); err != nil {
		s.log.Warn("failed to invalidate orders cache", zap.Error(err))
	}
}
