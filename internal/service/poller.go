package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"bundlehub-client/internal/api"
	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/session"

	"go.uber.org/zap"
)

// OrderPoller refreshes one in-flight order's status on a fixed interval so
// the client reflects asynchronous vendor fulfilment. Each successful fetch
// updates the order's cache entry and invalidates the my-orders list pages.
type OrderPoller struct {
	api      *api.Client
	tokens   *session.Store
	cache    cache.Cache
	interval time.Duration
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewOrderPoller creates a poller. interval defaults to 5s when unset.
func NewOrderPoller(apiClient *api.Client, tokens *session.Store, c cache.Cache, interval, cacheTTL time.Duration, log *zap.Logger) *OrderPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &OrderPoller{
		api:      apiClient,
		tokens:   tokens,
		cache:    c,
		interval: interval,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Watch polls the order immediately and then on every interval tick until
// the returned stop function is called or ctx is cancelled. An absent order
// id or enabled=false yields a no-op stop and no fetches at all. Stop is
// idempotent.
func (p *OrderPoller) Watch(ctx context.Context, orderID string, enabled bool) (stop func()) {
	if orderID == "" || !enabled {
		return func() {}
	}

	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() { close(done) })
	}

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx, orderID)
		for {
			select {
			case <-ticker.C:
				p.poll(ctx, orderID)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return stop
}

// poll fetches the order once. Without a valid credential it skips silently;
// fetch failures are logged and the next tick still fires.
func (p *OrderPoller) poll(ctx context.Context, orderID string) {
	if !p.tokens.Valid() {
		return
	}

	order, err := p.api.Order(ctx, orderID)
	if err != nil {
		p.log.Warn("order poll failed", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	raw, err := json.Marshal(order)
	if err != nil {
		p.log.Warn("failed to encode polled order", zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, cache.OrderKey(orderID), raw, p.cacheTTL); err != nil {
		p.log.Warn("failed to cache polled order", zap.Error(err))
	}
	if err := p.cache.DeletePrefix(ctx, cache.MyOrdersPrefix); err != nil {
		p.log.Warn("failed to invalidate orders cache", zap.Error(err))
	}
}
