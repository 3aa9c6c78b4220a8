package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bundlehub-client/internal/model"
)

// CreateOrder places a direct order for a product.
func (c *Client) CreateOrder(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	var created model.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Order fetches one order's current state.
func (c *Client) Order(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	path := "/api/orders/" + orderID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders fetches one page of the current user's orders. Older backend
// deployments return a bare array; both shapes normalize to an OrderPage.
func (c *Client) MyOrders(ctx context.Context, page, limit int) (*model.OrderPage, error) {
	path := fmt.Sprintf("/api/orders/mine?page=%d&limit=%d", page, limit)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrderPage(raw, page, limit)
}

func decodeOrderPage(raw json.RawMessage, page, limit int) (*model.OrderPage, error) {
	var orders []model.Order
	if err := json.Unmarshal(raw, &orders); err == nil {
		return &model.OrderPage{
			Orders: orders,
			Pagination: model.Pagination{
				Total: len(orders),
				Page:  page,
				Limit: limit,
				Pages: 1,
			},
		}, nil
	}

	var result model.OrderPage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode orders page: %w", err)
	}
	return &result, nil
}
