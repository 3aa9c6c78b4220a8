package api

import (
	"context"
	"net/http"

	"bundlehub-client/internal/model"
)

// Products lists the available data bundles.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a bundle to the catalog. Admin only.
func (c *Client) CreateProduct(ctx context.Context, p model.NewProduct) (*model.Product, error) {
	var created model.Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
