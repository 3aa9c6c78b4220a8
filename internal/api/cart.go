package api

import (
	"context"
	"net/http"

	"bundlehub-client/internal/model"
)

// Cart fetches the server-side cart for the authenticated identity.
func (c *Client) Cart(ctx context.Context) ([]model.ServerCartLine, error) {
	var lines []model.ServerCartLine
	if err := c.doJSON(ctx, http.MethodGet, "/api/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// CartAdd adds one entry to the server cart.
func (c *Client) CartAdd(ctx context.Context, req model.CartAddRequest) error {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	return c.doJSON(ctx, http.MethodPost, "/api/cart/add", req, nil)
}

// CartRemove removes all entries for a product from the server cart.
func (c *Client) CartRemove(ctx context.Context, productID string) error {
	body := map[string]string{"productId": productID}
	return c.doJSON(ctx, http.MethodPost, "/api/cart/remove", body, nil)
}

// CartClear empties the server cart.
func (c *Client) CartClear(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/cart/clear", nil, nil)
}

// Checkout places an order for the server cart contents.
func (c *Client) Checkout(ctx context.Context, paymentMethod string) (*model.CheckoutResult, error) {
	req := model.CheckoutRequest{PaymentMethod: paymentMethod}
	var result model.CheckoutResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/checkout", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PaystackInitialize starts a redirect-based gateway payment.
func (c *Client) PaystackInitialize(ctx context.Context, req model.PaystackInit) (*model.PaystackAuthorization, error) {
	var auth model.PaystackAuthorization
	if err := c.doJSON(ctx, http.MethodPost, "/api/paystack/initialize", req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}
