package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mrirakib04/sks-web/internal/domain"
)

// ErrNotApplied means the backend answered 2xx but reported that nothing
// was inserted, modified or deleted.
var ErrNotApplied = errors.New("backend did not apply the change")

type writeResult struct {
	InsertedID    string `json:"insertedId"`
	ModifiedCount int    `json:"modifiedCount"`
	DeletedCount  int    `json:"deletedCount"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Error         string `json:"error"`
}

func (r writeResult) notApplied() error {
	if r.Error != "" {
		return fmt.Errorf("%w: %s", ErrNotApplied, r.Error)
	}
	return ErrNotApplied
}

func (c *Client) AdminOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/admin/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) PatchOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return c.patchOrder(ctx, id, map[string]string{"orderStatus": string(status)})
}

func (c *Client) PatchPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return c.patchOrder(ctx, id, map[string]string{"paymentStatus": string(status)})
}

func (c *Client) patchOrder(ctx context.Context, id string, body map[string]string) error {
	var res writeResult
	if err := c.send(ctx, http.MethodPatch, "/admin/orders/"+escape(id), body, &res); err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return res.notApplied()
	}
	return nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	var res writeResult
	if err := c.send(ctx, http.MethodDelete, "/admin/orders/delete/"+escape(id), nil, &res); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return res.notApplied()
	}
	return nil
}

func (c *Client) OrderStats(ctx context.Context) ([]domain.OrderDayStat, error) {
	var stats []domain.OrderDayStat
	if err := c.get(ctx, "/admin/home/order/stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/admin/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) AdminProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/admin/product/get/"+escape(id), &p); err != nil {
		return domain.Product{}, err
	}
	if p.ID == "" {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	return c.insert(ctx, "/products", p)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p domain.Product) error {
	return c.succeed(ctx, http.MethodPut, "/admin/products/update/"+escape(id), p)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.succeed(ctx, http.MethodDelete, "/admin/products/delete/"+escape(id), nil)
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (string, error) {
	return c.insert(ctx, "/settings/category", cat)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, cat domain.Category) error {
	return c.succeed(ctx, http.MethodPut, "/settings/category/"+escape(id), cat)
}

func (c *Client) CreateBanner(ctx context.Context, b domain.Banner) (string, error) {
	return c.insert(ctx, "/settings/banner", b)
}

func (c *Client) UpdateBanner(ctx context.Context, id string, b domain.Banner) error {
	return c.succeed(ctx, http.MethodPut, "/settings/banner/"+escape(id), b)
}

// DeleteSetting removes a category or a banner; both live in one collection.
func (c *Client) DeleteSetting(ctx context.Context, id string) error {
	return c.succeed(ctx, http.MethodDelete, "/settings/"+escape(id), nil)
}

// Customers lists users without a staff role.
func (c *Client) Customers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/users/none", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) insert(ctx context.Context, path string, body any) (string, error) {
	var res writeResult
	if err := c.send(ctx, http.MethodPost, path, body, &res); err != nil {
		return "", err
	}
	if res.InsertedID == "" {
		return "", res.notApplied()
	}
	return res.InsertedID, nil
}

func (c *Client) succeed(ctx context.Context, method, path string, body any) error {
	var res writeResult
	if err := c.send(ctx, method, path, body, &res); err != nil {
		return err
	}
	if !res.Success {
		return res.notApplied()
	}
	return nil
}
