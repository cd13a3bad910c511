package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/models"
	"accountsvc/internal/service"
)

const (
	userIDKey = "current_user_id"

	msgNotAuthorized = "Not authorized, please login"
	msgUserGone      = "Invalid token, user not found"
)

// Authenticator resolves a session token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// SessionToken returns the session token of the request: the session
// cookie first, then a Bearer Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// Auth loads the session user before protected handlers run. A valid token
// whose user no longer exists is rejected like a bad token.
func Auth(authn Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgNotAuthorized})
			return
		}

		user, err := authn.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgUserGone})
			return
		case errors.Is(err, service.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgNotAuthorized})
			return
		default:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// UserID returns the id of the user Auth resolved.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
