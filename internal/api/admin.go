package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bundlehub-client/internal/model"
)

// UnverifiedAgents lists agents awaiting verification. Admin only.
func (c *Client) UnverifiedAgents(ctx context.Context) ([]model.User, error) {
	var agents []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/agents/unverified", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// VerifyAgent marks an agent as verified. Admin only.
func (c *Client) VerifyAgent(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	path := "/api/users/" + userID + "/verify"
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Agents lists all verified agents. Admin only.
func (c *Client) Agents(ctx context.Context) ([]model.User, error) {
	var agents []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// LoadWallet credits an agent's wallet balance. Admin only.
func (c *Client) LoadWallet(ctx context.Context, userID string, amount float64) error {
	path := "/api/admin/wallet/" + userID + "/load"
	return c.doJSON(ctx, http.MethodPost, path, model.WalletLoad{Amount: amount}, nil)
}

// Totals fetches the aggregate order and revenue report. Admin only.
func (c *Client) Totals(ctx context.Context) (*model.Totals, error) {
	var totals model.Totals
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/totals", nil, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}

// AdminOrders fetches one page of all orders. Admin only.
func (c *Client) AdminOrders(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	path := fmt.Sprintf("/api/admin/orders?page=%d&limit=%d", page, limit)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderPage(raw, page, limit)
}
