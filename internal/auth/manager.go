package auth

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthenticated means the request carries no usable session.
var ErrUnauthenticated = errors.New("authentication required")

// Manager ties the server-side Store to the signed cookie value.
type Manager struct {
	store  *Store
	tokens *TokenCodec
}

func NewManager(store *Store, secret string) *Manager {
	return &Manager{store: store, tokens: NewTokenCodec(secret, store.TTL())}
}

// Start opens a session for userID and returns the cookie value.
func (m *Manager) Start(ctx context.Context, userID int64) (string, error) {
	id, err := m.store.Create(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := m.tokens.Encode(id, userID)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", err
	}
	return token, nil
}

// Resolve returns the user id behind token. A token that fails verification
// or points at a missing or foreign session yields ErrUnauthenticated; store
// errors pass through.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}
	claims, err := m.tokens.Decode(token)
	if err != nil {
		return 0, ErrUnauthenticated
	}
	userID, err := m.store.GetUserID(ctx, claims.SessionID)
	if errors.Is(err, ErrNoSession) {
		return 0, ErrUnauthenticated
	}
	if err != nil {
		return 0, err
	}
	if userID != claims.UserID {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

// End deletes the session behind token. Unverifiable tokens are ignored.
func (m *Manager) End(ctx context.Context, token string) error {
	claims, err := m.tokens.Decode(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.SessionID)
}

// TTL is the lifetime used for cookie max-age.
func (m *Manager) TTL() time.Duration { return m.store.TTL() }
