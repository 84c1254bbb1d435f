package middleware

import (
	"net/http"

	"github.com/ErlanBelekov/swinggity/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "token"
	// UserIDKey is the gin context key set by Session.
	UserIDKey = "userID"

	errNoToken      = "Unauthorized - no token provided"
	errInvalidToken = "Unauthorized - invalid token"
)

// SessionVerifier is satisfied by *token.Session.
type SessionVerifier interface {
	Verify(raw string) (string, error)
}

// Session requires a valid session cookie and exposes the user ID under
// UserIDKey and in the request context.
func Session(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errNoToken})
			return
		}

		userID, err := verifier.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errInvalidToken})
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
