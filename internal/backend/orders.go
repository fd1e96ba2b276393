package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/mrirakib04/sks-web/internal/domain"
)

var ErrMissingRedirect = errors.New("payment gateway returned no redirect url")

type codResponse struct {
	OrderID string `json:"orderId"`
}

type sslResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreateCODOrder places a cash-on-delivery order and returns its id.
func (c *Client) CreateCODOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	var resp codResponse
	if err := c.send(ctx, http.MethodPost, "/orders/cod", draft, &resp); err != nil {
		return "", err
	}
	if resp.OrderID == "" {
		return "", errors.New("backend returned no order id")
	}
	return resp.OrderID, nil
}

// CreateSSLOrder opens a gateway payment and returns the URL to send the
// shopper to.
func (c *Client) CreateSSLOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	var resp sslResponse
	if err := c.send(ctx, http.MethodPost, "/orders/ssl", draft, &resp); err != nil {
		return "", err
	}
	if resp.RedirectURL == "" {
		return "", ErrMissingRedirect
	}
	return resp.RedirectURL, nil
}

func (c *Client) Order(ctx context.Context, id string) (domain.Order, error) {
	return c.order(ctx, "/orders/"+escape(id))
}

func (c *Client) TrackOrder(ctx context.Context, id string) (domain.Order, error) {
	return c.order(ctx, "/orders/track/"+escape(id))
}

func (c *Client) MyOrders(ctx context.Context, email string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, "/orders/my/"+escape(email), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// order treats an answer without an _id as not found; the backend answers
// unknown ids with an empty body rather than a 404.
func (c *Client) order(ctx context.Context, path string) (domain.Order, error) {
	var o domain.Order
	if err := c.get(ctx, path, &o); err != nil {
		return domain.Order{}, err
	}
	if o.ID == "" {
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}
