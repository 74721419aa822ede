package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// SessionHolder owns the single live session of the process and its
// bearer token. A session is replaced wholesale, never edited in place.
type SessionHolder struct {
	store port.SessionSnapshotStore
	auth  port.Authenticator

	mu      sync.RWMutex
	snap    domain.SessionSnapshot
	present bool

	subsMu  sync.Mutex
	nextSub int
	subs    map[int]func()
}

// NewSessionHolder restores a persisted session. A restored session is
// trusted until the service rejects its token.
func NewSessionHolder(ctx context.Context, store port.SessionSnapshotStore, auth port.Authenticator) (*SessionHolder, error) {
	snap, ok, err := store.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &SessionHolder{
		store:   store,
		auth:    auth,
		snap:    snap,
		present: ok,
		subs:    make(map[int]func()),
	}, nil
}

// Login authenticates against the service. On any failure the previous
// session, if any, stays in place.
func (h *SessionHolder) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return domain.Session{}, ErrMissingCredentials
	}

	sess, token, err := h.auth.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	snap := domain.SessionSnapshot{Session: sess, Token: token}
	if err := h.store.SaveSession(ctx, snap); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	h.mu.Lock()
	h.snap = snap
	h.present = true
	h.mu.Unlock()

	log.Printf("session holder: logged in user %s", sess.UserID)
	return sess, nil
}

// Logout drops the session and token. It never fails; a failed snapshot
// delete is logged.
func (h *SessionHolder) Logout(ctx context.Context) {
	h.clear(ctx)
}

// Invalidate drops the session after the service rejected its token and
// notifies every subscriber.
func (h *SessionHolder) Invalidate(ctx context.Context) {
	h.clear(ctx)
	log.Printf("session holder: session invalidated by service")

	h.subsMu.Lock()
	subs := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.subsMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// OnInvalidated registers fn to run after every Invalidate. The returned
// func removes the subscription.
func (h *SessionHolder) OnInvalidated(fn func()) (unsubscribe func()) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn

	return func() {
		h.subsMu.Lock()
		defer h.subsMu.Unlock()
		delete(h.subs, id)
	}
}

func (h *SessionHolder) Current() (domain.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap.Session, h.present
}

// Token is the bearer token of the live session, empty when anonymous.
func (h *SessionHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.present {
		return ""
	}
	return h.snap.Token
}

func (h *SessionHolder) clear(ctx context.Context) {
	h.mu.Lock()
	h.snap = domain.SessionSnapshot{}
	h.present = false
	h.mu.Unlock()

	if err := h.store.ClearSession(ctx); err != nil {
		log.Printf("session holder: clear persisted session: %v", err)
	}
}
