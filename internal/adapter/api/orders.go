package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/adapter/wire"
	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var resp wire.Order
	if err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: wire.OrderFromDraft(draft)}, &resp); err != nil {
		return domain.Order{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return c.orders(ctx, "/orders")
}

func (c *Client) OrderHistory(ctx context.Context, userID string) ([]domain.Order, error) {
	return c.orders(ctx, "/orders/history/"+url.PathEscape(userID))
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	var resp wire.Order
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/orders/" + url.PathEscape(orderID) + "/status",
		body:   wire.StatusUpdate{Status: string(status)},
	}, &resp)
	if err != nil {
		return domain.Order{}, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) orders(ctx context.Context, path string) ([]domain.Order, error) {
	var resp []wire.Order
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(resp))
	for _, o := range resp {
		out = append(out, o.ToDomain())
	}
	return out, nil
}
