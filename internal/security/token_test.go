package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"dentix/api/internal/models"
)

const testSecret = "unit-test-secret"

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(testSecret, "dentix-api", "dentix-clients", 15*time.Minute)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerRejectsEmptySecret(t *testing.T) {
	_, err := NewIssuer("", "dentix-api", "dentix-clients", 15*time.Minute)
	require.ErrorIs(t, err, ErrEmptySigningSecret)
}

func TestIssueTokenClaims(t *testing.T) {
	issuer := testIssuer(t)
	user := models.User{ID: "u-1", Email: "dr@clinic.test", DisplayName: "Dr. Molar"}
	now := time.Now().Truncate(time.Second)

	signed, err := issuer.issueAt(user, []string{"admin", "user"}, now)
	require.NoError(t, err)

	// Decode without verification to inspect the claim set on the wire.
	var claims AccessClaims
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(signed, &claims)
	require.NoError(t, err)
	require.Equal(t, "HS512", token.Method.Alg())

	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "Dr. Molar", claims.Name)
	require.Equal(t, []string{"admin", "user"}, claims.Roles)
	require.Equal(t, "dentix-api", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{"dentix-clients"}, claims.Audience)
	require.Equal(t, now.Unix(), claims.NotBefore.Unix())
	require.Equal(t, now.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestParseRoundTrip(t *testing.T) {
	issuer := testIssuer(t)
	user := models.User{ID: "u-2", DisplayName: "Pat"}

	signed, err := issuer.Issue(user, []string{"user"})
	require.NoError(t, err)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "u-2", claims.Subject)
	require.Equal(t, []string{"user"}, claims.Roles)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := testIssuer(t)
	other, err := NewIssuer("other-secret", "dentix-api", "dentix-clients", 15*time.Minute)
	require.NoError(t, err)

	signed, err := other.Issue(models.User{ID: "u-3", DisplayName: "x"}, nil)
	require.NoError(t, err)

	_, err = issuer.Parse(signed)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(t)
	signed, err := issuer.issueAt(models.User{ID: "u-4", DisplayName: "x"}, nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.Parse(signed)
	require.Error(t, err)
}
