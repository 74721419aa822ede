package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Well-known keys shared by every backend.
const (
	CartKey    = "cart"
	SessionKey = "session"
)

var ErrNotFound = errors.New("state not found")

// Snapshots encodes cart and session state as JSON on top of any
// StateStore. Two processes sharing one medium overwrite each other's
// snapshots; the last write wins.
type Snapshots struct {
	store port.StateStore
}

func NewSnapshots(store port.StateStore) *Snapshots {
	return &Snapshots{store: store}
}

func (s *Snapshots) LoadCart(ctx context.Context) (domain.Cart, error) {
	payload, err := s.store.Get(ctx, CartKey)
	if errors.Is(err, ErrNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		log.Printf("snapshots: discarding unreadable cart snapshot: %v", err)
		return domain.Cart{}, nil
	}
	return cart, nil
}

func (s *Snapshots) SaveCart(ctx context.Context, cart domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.store.Put(ctx, CartKey, payload); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Snapshots) LoadSession(ctx context.Context) (domain.SessionSnapshot, bool, error) {
	payload, err := s.store.Get(ctx, SessionKey)
	if errors.Is(err, ErrNotFound) {
		return domain.SessionSnapshot{}, false, nil
	}
	if err != nil {
		return domain.SessionSnapshot{}, false, fmt.Errorf("load session: %w", err)
	}

	var snap domain.SessionSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		log.Printf("snapshots: discarding unreadable session snapshot: %v", err)
		return domain.SessionSnapshot{}, false, nil
	}
	if snap.Session.UserID == "" || snap.Token == "" {
		return domain.SessionSnapshot{}, false, nil
	}
	snap.Session.Role = domain.ParseRole(string(snap.Session.Role))
	return snap, true, nil
}

func (s *Snapshots) SaveSession(ctx context.Context, snap domain.SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Put(ctx, SessionKey, payload); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Snapshots) ClearSession(ctx context.Context) error {
	if err := s.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
