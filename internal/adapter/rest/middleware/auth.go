package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bazario/listing-service/internal/platform/logger"
)

// SellerIDKey is the gin context key the authenticated seller identity
// is stored under.
const SellerIDKey = "authenticatedSellerID"

// TokenVerifier resolves an opaque bearer token to an owner identity.
type TokenVerifier interface {
	VerifyToken(tokenString string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	log      *logger.Logger
}

func NewAuthMiddleware(verifier TokenVerifier, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, log: log}
}

// RequireAuth rejects requests without a valid "Bearer <token>" header
// and stores the resolved seller id in the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is not provided"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			am.log.Warn("RequireAuth: malformed authorization header", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token format is invalid, expected 'Bearer <token>'"})
			return
		}

		sellerID, err := am.verifier.VerifyToken(parts[1])
		if err != nil {
			am.log.Warn("RequireAuth: token rejected", "path", c.FullPath(), "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(SellerIDKey, sellerID)
		c.Next()
	}
}

// SellerID returns the authenticated seller id set by RequireAuth.
func SellerID(c *gin.Context) string {
	return c.GetString(SellerIDKey)
}
