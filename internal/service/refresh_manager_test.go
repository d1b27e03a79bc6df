package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dentix/api/internal/models"
)

func TestRefreshManagerIssueOverwrites(t *testing.T) {
	users := newMemUserStore()
	require.NoError(t, users.Create(context.Background(), models.User{ID: "u-1", Email: "a@b.c"}))

	m := NewRefreshManager(users, time.Hour)

	first, err := m.Issue(context.Background(), "u-1")
	require.NoError(t, err)
	second, err := m.Issue(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	stored, err := users.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, second, *stored.RefreshToken)

	// The overwritten token no longer validates.
	_, err = m.Validate(context.Background(), "u-1", first)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	user, err := m.Validate(context.Background(), "u-1", second)
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
}

func TestRefreshManagerValidateHasNoSideEffects(t *testing.T) {
	users := newMemUserStore()
	require.NoError(t, users.Create(context.Background(), models.User{ID: "u-1", Email: "a@b.c"}))

	m := NewRefreshManager(users, time.Hour)
	token, err := m.Issue(context.Background(), "u-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := m.Validate(context.Background(), "u-1", token)
		require.NoError(t, err)
	}

	stored, err := users.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, token, *stored.RefreshToken)
}

func TestRefreshManagerRotateRequiresCurrentToken(t *testing.T) {
	users := newMemUserStore()
	require.NoError(t, users.Create(context.Background(), models.User{ID: "u-1", Email: "a@b.c"}))

	m := NewRefreshManager(users, time.Hour)
	token, err := m.Issue(context.Background(), "u-1")
	require.NoError(t, err)

	_, err = m.Rotate(context.Background(), "u-1", "not-the-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	next, err := m.Rotate(context.Background(), "u-1", token)
	require.NoError(t, err)
	require.NotEqual(t, token, next)

	_, err = m.Rotate(context.Background(), "u-1", token)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
