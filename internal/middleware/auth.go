package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dentix/api/internal/security"
)

const (
	ClaimsContextKey = "access_claims"
	UserIDContextKey = "current_user_id"
)

// Auth verifies the bearer access token and exposes its claims to handlers.
// Token verification is entirely stateless; the refresh token flow is the
// only place session state is consulted.
func Auth(issuer *security.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(ClaimsContextKey, *claims)
		c.Set(UserIDContextKey, claims.Subject)

		c.Next()
	}
}

// CurrentClaims returns the verified access claims set by Auth.
func CurrentClaims(c *gin.Context) (security.AccessClaims, bool) {
	claimsVal, exists := c.Get(ClaimsContextKey)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := claimsVal.(security.AccessClaims)
	return claims, ok
}
