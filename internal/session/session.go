package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record backing an admin token.
type Session struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expires returns the expiry as a time.Time.
func (s Session) Expires() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// Store keeps admin sessions keyed by session id.
// RevokeAll drops every session of a subject and reports how many were live.
type Store interface {
	Create(ctx context.Context, id, subject string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	RevokeAll(ctx context.Context, subject string) (int, error)
}
