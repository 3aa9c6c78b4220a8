package service

import (
	"context"
	"encoding/json"
	"fmt"

	"bundlehub-client/internal/api"
	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/model"
	"bundlehub-client/internal/repository"

	"go.uber.org/zap"
)

// Syncer pushes client-held cart state to the server cart: local scoped
// lines before checkout, and the pre-login pending bucket after login.
type Syncer struct {
	api   *api.Client
	cart  *CartStore
	repo  repository.PartitionRepository
	cache cache.Cache
	log   *zap.Logger
}

// NewSyncer creates a syncer over the given client and cart store.
func NewSyncer(apiClient *api.Client, cart *CartStore, repo repository.PartitionRepository, c cache.Cache, log *zap.Logger) *Syncer {
	return &Syncer{api: apiClient, cart: cart, repo: repo, cache: c, log: log}
}

// PushLocal pushes every local line to the server cart, one call per line in
// insertion order. The first failure aborts and leaves the local list intact
// so the user can retry; already-pushed lines need not be resent. Only on
// full success is the local list cleared.
func (s *Syncer) PushLocal(ctx context.Context) error {
	for _, line := range s.cart.Lines() {
		req := model.CartAddRequest{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PhoneNumber: line.PhoneNumber,
		}
		if err := s.api.CartAdd(ctx, req); err != nil {
			return fmt.Errorf("failed to sync cart line for product %s: %w", line.ProductID, err)
		}
	}

	s.cart.Clear(ctx)
	return nil
}

// Checkout syncs any local lines to the server cart and then places the
// order. A sync failure aborts the checkout without data loss.
func (s *Syncer) Checkout(ctx context.Context, paymentMethod string) (*model.CheckoutResult, error) {
	if len(s.cart.Lines()) > 0 {
		if err := s.PushLocal(ctx); err != nil {
			return nil, err
		}
	}

	result, err := s.api.Checkout(ctx, paymentMethod)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyCart, cache.KeyUser)
	if err := s.cache.DeletePrefix(ctx, cache.MyOrdersPrefix); err != nil {
		s.log.Warn("failed to invalidate orders cache", zap.Error(err))
	}
	return result, nil
}

// MigratePending runs the login-time migration: the user's own stale
// partition from an earlier session on this device is deleted, then entries
// staged in the pending bucket are pushed to the server cart one at a time
// and the bucket is cleared.
func (s *Syncer) MigratePending(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, repository.UserScope(userID)); err != nil {
		s.log.Warn("failed to delete stale user cart partition",
			zap.String("user_id", userID), zap.Error(err))
	}

	entries := s.pendingEntries(ctx)
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		req := model.CartAddRequest{
			ProductID:   entry.ProductID,
			Quantity:    entry.Quantity,
			PhoneNumber: entry.PhoneNumber,
		}
		if err := s.api.CartAdd(ctx, req); err != nil {
			return fmt.Errorf("failed to push pending cart entry for product %s: %w", entry.ProductID, err)
		}
	}

	if err := s.repo.Delete(ctx, repository.PendingScope); err != nil {
		s.log.Warn("failed to clear pending cart bucket", zap.Error(err))
	}
	s.invalidate(ctx, cache.KeyCart)
	return nil
}

// StagePending appends an entry to the pending bucket, used when an
// unauthenticated add-to-cart hits a 401.
func (s *Syncer) StagePending(ctx context.Context, entry model.PendingEntry) {
	if entry.Quantity <= 0 {
		entry.Quantity = 1
	}

	entries := s.pendingEntries(ctx)
	entries = append(entries, entry)

	raw, err := json.Marshal(entries)
	if err != nil {
		s.log.Warn("failed to encode pending cart bucket", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, repository.PendingScope, raw); err != nil {
		s.log.Warn("failed to persist pending cart bucket", zap.Error(err))
	}
}

// PendingEntries returns the staged pre-login entries, empty on absent or
// malformed data.
func (s *Syncer) PendingEntries(ctx context.Context) []model.PendingEntry {
	return s.pendingEntries(ctx)
}

func (s *Syncer) pendingEntries(ctx context.Context) []model.PendingEntry {
	raw, err := s.repo.Load(ctx, repository.PendingScope)
	if err != nil {
		s.log.Warn("failed to load pending cart bucket", zap.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}

	var entries []model.PendingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.Warn("malformed pending cart bucket, starting empty", zap.Error(err))
		return nil
	}
	return entries
}

func (s *Syncer) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache entry", zap.String("key", key), zap.Error(err))
		}
	}
}
