package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingJWTSecret))
}

func TestLoadWithSecretFromEnv(t *testing.T) {
	t.Setenv("DENTIX_SECURITY_JWTSECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "test-secret", cfg.Security.JWTSecret)
	require.Equal(t, "15m0s", cfg.Security.AccessTokenTTL.String())
	require.Equal(t, "168h0m0s", cfg.Security.RefreshTokenTTL.String())
	require.Equal(t, "dentix-api", cfg.Security.JWTIssuer)
}
