package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"dentix/api/internal/models"
	"dentix/api/internal/security"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *security.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := security.NewIssuer("mw-test-secret", "dentix-api", "dentix-clients", 15*time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", Auth(issuer), func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	router.GET("/admin", Auth(issuer), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, issuer
}

func doRequest(router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingToken(t *testing.T) {
	router, _ := newAuthRouter(t)
	rec := doRequest(router, "/protected", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	router, _ := newAuthRouter(t)
	rec := doRequest(router, "/protected", "not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidToken(t *testing.T) {
	router, issuer := newAuthRouter(t)

	token, err := issuer.Issue(models.User{ID: "u-1", DisplayName: "Pat"}, []string{models.RoleUser})
	require.NoError(t, err)

	rec := doRequest(router, "/protected", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "u-1")
}

func TestRequireRolesForbidsUser(t *testing.T) {
	router, issuer := newAuthRouter(t)

	token, err := issuer.Issue(models.User{ID: "u-1", DisplayName: "Pat"}, []string{models.RoleUser})
	require.NoError(t, err)

	rec := doRequest(router, "/admin", token)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	router, issuer := newAuthRouter(t)

	token, err := issuer.Issue(models.User{ID: "u-2", DisplayName: "Doc"}, []string{models.RoleAdmin})
	require.NoError(t, err)

	rec := doRequest(router, "/admin", token)
	require.Equal(t, http.StatusOK, rec.Code)
}
