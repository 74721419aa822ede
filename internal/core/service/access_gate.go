package service

import "github.com/rl1809/storefront/internal/core/domain"

type SessionReader interface {
	Current() (domain.Session, bool)
}

// AccessGate evaluates route classes against the live session on every
// call; it caches nothing.
type AccessGate struct {
	sessions SessionReader
}

func NewAccessGate(sessions SessionReader) *AccessGate {
	return &AccessGate{sessions: sessions}
}

func (g *AccessGate) CanAccess(c domain.RouteClass) bool {
	sess, ok := g.sessions.Current()
	return domain.CanAccess(sess, ok, c)
}

// Require returns the live session when c is permitted, or a Forbidden
// error naming what is missing.
func (g *AccessGate) Require(c domain.RouteClass) (domain.Session, error) {
	sess, ok := g.sessions.Current()
	if domain.CanAccess(sess, ok, c) {
		return sess, nil
	}
	if !ok {
		return domain.Session{}, ErrLoginRequired
	}
	return domain.Session{}, ErrAdminRequired
}
