package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type contextKey string

const identityContextKey contextKey = "identity"

// RequireIdentity reads the caller's identity number from a header set by the
// authenticating gateway. Requests without it are rejected.
func RequireIdentity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader(header)
		if identity == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

// GetIdentity returns the identity stored by RequireIdentity, or "".
func GetIdentity(ctx context.Context) string {
	identity, _ := ctx.Value(identityContextKey).(string)
	return identity
}

// WithIdentity stores identity the way RequireIdentity does.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
