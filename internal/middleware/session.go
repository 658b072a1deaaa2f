package middleware

import (
	"errors"
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"budget_tracker/internal/domain"
	"budget_tracker/internal/session"

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/sirupsen/logrus"
)

// Context keys set for authenticated requests
const (
	UserIDKey    = "userID"
	SessionIDKey = "sessionID"
	CookieName   = "session"
)

// SessionToken extracts the session token from the cookie or a Bearer header
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// resolve stores the caller's identity in the context when the token is live
func resolve(c *gin.Context, sessions *session.Manager) error {
	token := SessionToken(c)
	if token == "" {
		return domain.ErrUnauthenticated
	}
	s, err := sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		return err
	}
	c.Set(UserIDKey, s.UserID)
	c.Set(SessionIDKey, s.ID)
	return nil
}

// SessionAuthMiddleware rejects requests without a live session
func SessionAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolve(c, sessions); err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				logrus.WithField("error", err.Error()).Error("Session lookup failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// OptionalSessionMiddleware resolves a session when one is present and never aborts
func OptionalSessionMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolve(c, sessions); err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
			logrus.WithField("error", err.Error()).Error("Session lookup failed")
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
