package service

import (
	"context"
	"errors"
	"time"

	"dentix/api/internal/models"
	"dentix/api/internal/repository"
	"dentix/api/internal/security"
)

// ErrInvalidRefreshToken covers every expected refresh failure: unknown
// user, absent token, mismatch, expiry, or losing a rotation race. Callers
// must not be able to tell which one it was.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// RefreshManager owns the lifecycle of opaque refresh tokens: it generates
// them, persists them with an expiry, validates presented ones, and rotates
// on every use. A user holds at most one live token; Issue and Rotate are
// the only two places the stored value changes.
type RefreshManager struct {
	users UserStore
	ttl   time.Duration
}

func NewRefreshManager(users UserStore, ttl time.Duration) *RefreshManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RefreshManager{users: users, ttl: ttl}
}

// Issue generates a fresh token and unconditionally overwrites the user's
// stored one. Any previously issued token dies here.
func (m *RefreshManager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := security.GenerateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.users.SetRefreshToken(ctx, userID, token, time.Now().Add(m.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks a presented token against the stored state without
// touching it. It returns the user for subsequent token issuance.
func (m *RefreshManager) Validate(ctx context.Context, userID string, presented string) (models.User, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidRefreshToken
		}
		return models.User{}, err
	}

	if !user.HasValidRefreshToken(time.Now()) {
		return models.User{}, ErrInvalidRefreshToken
	}
	if !security.RefreshTokensMatch(*user.RefreshToken, presented) {
		return models.User{}, ErrInvalidRefreshToken
	}
	return user, nil
}

// Rotate replaces the presented token with a new one. The store swap is
// conditional on the presented value still being current, so two refreshes
// racing with the same token produce exactly one winner.
func (m *RefreshManager) Rotate(ctx context.Context, userID string, presented string) (string, error) {
	next, err := security.GenerateRefreshToken()
	if err != nil {
		return "", err
	}

	err = m.users.RotateRefreshToken(ctx, userID, presented, next, time.Now().Add(m.ttl))
	if err != nil {
		if errors.Is(err, repository.ErrStaleRefreshToken) || errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	return next, nil
}
