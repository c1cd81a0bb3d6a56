package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// SessionResolver turns a cookie value into a user id.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// SessionToken returns the raw session cookie, or "".
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// SetSessionCookie writes an HttpOnly, SameSite=Lax session cookie.
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}

// DenyJSON answers 401 with a JSON body.
func DenyJSON(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
}

// RequireSession returns a middleware that resolves the session cookie and
// sets the current user ID in context. If missing or invalid, deny handles
// the request (DenyJSON when nil).
func RequireSession(sessions SessionResolver, logger *slog.Logger, deny gin.HandlerFunc) gin.HandlerFunc {
	if deny == nil {
		deny = DenyJSON
	}
	return func(c *gin.Context) {
		userID, err := sessions.Resolve(c.Request.Context(), SessionToken(c))
		if errors.Is(err, ErrUnauthenticated) {
			deny(c)
			c.Abort()
			return
		}
		if err != nil {
			logger.Error("resolve session", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
