package middleware // middleware provides shared request processing for handlers

import (
	"context"  // context carries request deadlines into session lookups
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming
	"time"     // timeout for the session lookup

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/skillforge/quest-backend/internal/model"
)

// userContextKey is where the resolved user is stored on the Echo context.
const userContextKey = "user"

// SessionResolver resolves an opaque bearer token to its user. Implemented
// by repository.SessionRepo; the interface exists so middleware can be
// tested without a database.
type SessionResolver interface {
	ResolveUser(ctx context.Context, token string) (model.User, error)
}

// SessionAuth returns an Echo middleware that validates a bearer token
// against the session store and injects the resolved user into the request
// context. Every request re-reads the store; nothing is cached in process.
// Missing, malformed, expired or revoked tokens all yield 401.
func SessionAuth(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request())
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "missing bearer token"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := sessions.ResolveUser(ctx, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "invalid or expired token"})
			}
			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// RequireAdmin returns a middleware that rejects authenticated non-admin
// users with 403. The distinction matters: a missing or invalid token is
// 401 (SessionAuth), a valid token without the admin flag is 403. It must
// run after SessionAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "missing bearer token"})
			}
			if !u.IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"ok": false, "error": "admin authorization required"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by SessionAuth, if any.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// BearerToken extracts the token from an Authorization header. The scheme
// prefix is matched case-insensitively and surrounding whitespace is
// trimmed; anything else returns "".
func BearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
