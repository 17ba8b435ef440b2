package middleware

import (
	"errors"
	"net/http"
	"strings"

	"taskify/server/internal/dto"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the gin context.
func RequireAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(
				dto.CodeMissingToken, "Authorization header is required"))
			return
		}

		scheme, tokenStr, ok := strings.Cut(authHeader, " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(
				dto.CodeInvalidTokenFormat, "Authorization header must use Bearer token"))
			return
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(
					dto.CodeExpiredToken, "Token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewError(
				dto.CodeInvalidToken, "Token validation failed"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

// CurrentUserID returns the identity RequireAuth attached. Handlers must not
// read the owner from the request body or query.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func CurrentUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
