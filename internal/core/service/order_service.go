package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CartCheckout is the part of the cart the submission pipeline needs.
type CartCheckout interface {
	Snapshot() domain.Cart
	Clear(ctx context.Context) error
}

// OrderService turns the cart into an order and carries the role-gated
// order status changes.
type OrderService struct {
	cart     CartCheckout
	sessions SessionReader
	gate     *AccessGate
	api      port.OrderAPI
}

func NewOrderService(cart CartCheckout, sessions SessionReader, api port.OrderAPI) *OrderService {
	return &OrderService{
		cart:     cart,
		sessions: sessions,
		gate:     NewAccessGate(sessions),
		api:      api,
	}
}

// Submit sends the current cart as one order request. It does not retry
// and does not deduplicate: two concurrent calls may create two orders.
// The cart is cleared only after the service accepted the order; on any
// failure it is left untouched.
func (s *OrderService) Submit(ctx context.Context) (domain.Order, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return domain.Order{}, ErrCheckoutLogin
	}

	cart := s.cart.Snapshot()
	if cart.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}

	draft := domain.NewOrderDraft(sess.UserID, cart)

	order, err := s.api.CreateOrder(ctx, draft)
	if err != nil {
		log.Printf("order service: submit for user %s failed: %v", sess.UserID, err)
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	// the order exists now; a caller that gave up must not leave the cart
	// behind for a second checkout
	if err := s.cart.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Printf("order service: order %s placed but cart not cleared: %v", order.ID, err)
	}
	log.Printf("order service: order %s placed for user %s", order.ID, sess.UserID)

	return order, nil
}

// History lists the orders of the logged-in user in the order the service
// returns them.
func (s *OrderService) History(ctx context.Context) ([]domain.Order, error) {
	sess, err := s.gate.Require(domain.RouteAuthenticated)
	if err != nil {
		return nil, err
	}

	orders, err := s.api.OrderHistory(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		// the service answers 404 for a user without orders
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	if _, err := s.gate.Require(domain.RouteAdminOnly); err != nil {
		return nil, err
	}

	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus requests status for orderID. Any known status is accepted
// whatever the order's current status; the service decides legality.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return domain.Order{}, ErrLoginRequired
	}
	if !domain.CanRequestStatusChange(sess.Role) {
		return domain.Order{}, ErrStatusChangeDenied
	}
	if !status.Valid() {
		return domain.Order{}, ErrUnknownOrderStatus
	}
	if orderID == "" {
		return domain.Order{}, domain.NewValidationError("Order id is required")
	}

	order, err := s.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order %s status: %w", orderID, err)
	}
	log.Printf("order service: order %s set to %s by %s", orderID, status, sess.UserID)
	return order, nil
}
