package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRefreshToken(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 32)

	other, err := GenerateRefreshToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestRefreshTokensMatch(t *testing.T) {
	require.True(t, RefreshTokensMatch("abc", "abc"))
	require.False(t, RefreshTokensMatch("abc", "abd"))
	require.False(t, RefreshTokensMatch("abc", ""))
}
