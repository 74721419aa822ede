package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CartStore owns the session's cart. Every mutation is written to the
// snapshot store before it is committed in memory and before the call
// returns; mutations are serialized in call order.
type CartStore struct {
	mu   sync.Mutex
	cart domain.Cart
	sink port.CartSnapshotStore
}

// NewCartStore restores the persisted cart, or starts empty.
func NewCartStore(ctx context.Context, sink port.CartSnapshotStore) (*CartStore, error) {
	cart, err := sink.LoadCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	return &CartStore{cart: cart, sink: sink}, nil
}

// AddItem merges quantity into the line for item.ID or appends a new line.
// It does not check stock.
func (s *CartStore) AddItem(ctx context.Context, item domain.CatalogItemRef, quantity int) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart {
		return c.Add(item, quantity)
	})
}

func (s *CartStore) RemoveItem(ctx context.Context, itemID string) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart {
		return c.Remove(itemID)
	})
}

// SetQuantity replaces a line's quantity; quantity <= 0 removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	return s.apply(ctx, func(c domain.Cart) domain.Cart {
		return c.SetQuantity(itemID, quantity)
	})
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.apply(ctx, func(domain.Cart) domain.Cart {
		return domain.Cart{}
	})
}

// Snapshot returns the current cart. The value never changes after it is
// returned, whatever happens to the store.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *CartStore) Lines() []domain.CartLine {
	return s.Snapshot().Lines()
}

func (s *CartStore) TotalPrice() decimal.Decimal {
	return s.Snapshot().TotalPrice()
}

func (s *CartStore) TotalQuantity() int {
	return s.Snapshot().TotalQuantity()
}

func (s *CartStore) apply(ctx context.Context, transition func(domain.Cart) domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := transition(s.cart)
	if err := s.sink.SaveCart(ctx, next); err != nil {
		log.Printf("cart store: snapshot write failed, change discarded: %v", err)
		return fmt.Errorf("persist cart: %w", err)
	}
	s.cart = next
	return nil
}
