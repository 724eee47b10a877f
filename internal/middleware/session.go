package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/dineqr/dineqr/internal/auth"
	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/response"
)

const (
	// SessionCookieName is the cookie that carries the signed session token.
	SessionCookieName = "session-token"

	// CtxUserKey holds the resolved *models.User for authenticated requests.
	CtxUserKey = "currentUser"

	// CtxUserIDKey holds the authenticated user's id.
	CtxUserIDKey = "userID"
)

// CookieSettings controls the attributes of the session cookie.
type CookieSettings struct {
	// Secure marks the cookie HTTPS-only. Enabled in production.
	Secure bool

	// MaxAge is the cookie lifetime in seconds. Matches the token TTL.
	MaxAge int
}

// SessionContext resolves the session cookie into a user before the handler
// chain runs, and is the only layer that writes the session cookie afterwards.
// Auth handlers never touch the cookie themselves: they park the token (or a
// clear instruction) in the relay under the request id, and once c.Next()
// returns — the handler chain is fully done — this middleware drains the relay
// entry and materialises it as a Set-Cookie header. Draining after c.Next()
// is what makes the handoff race-free: there is no timer and no polling,
// just the ordinary call stack.
func SessionContext(tokens *iauth.TokenService, relay *iauth.SessionRelay, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			if user, err := tokens.ResolveUser(c.Request.Context(), raw); err == nil && user != nil {
				c.Set(CtxUserKey, user)
				c.Set(CtxUserIDKey, user.ID)
			}
		}

		c.Next()

		pending, ok := relay.TakeAndClear(RequestIDFromContext(c))
		if !ok {
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		if pending.Clear {
			c.SetCookie(SessionCookieName, "", -1, "/", "", cookie.Secure, true)
			return
		}
		c.SetCookie(SessionCookieName, pending.Token, cookie.MaxAge, "/", "", cookie.Secure, true)
	}
}

// RequireUser gates a route group on an authenticated session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by SessionContext.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
