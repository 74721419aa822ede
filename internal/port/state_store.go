package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// StateStore is a durable key/value medium for client state.
type StateStore interface {
	// Get returns the payload stored under key, or storage.ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the payload under key; it returns once the write is issued
	Put(ctx context.Context, key string, payload []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

type CartSnapshotStore interface {
	// LoadCart restores the persisted cart, empty if none was saved
	LoadCart(ctx context.Context) (domain.Cart, error)

	// SaveCart persists the full cart, replacing any previous snapshot
	SaveCart(ctx context.Context, cart domain.Cart) error
}

type SessionSnapshotStore interface {
	// LoadSession returns the persisted session, ok=false when anonymous
	LoadSession(ctx context.Context) (snap domain.SessionSnapshot, ok bool, err error)

	// SaveSession persists the session together with its token
	SaveSession(ctx context.Context, snap domain.SessionSnapshot) error

	// ClearSession removes any persisted session
	ClearSession(ctx context.Context) error
}
