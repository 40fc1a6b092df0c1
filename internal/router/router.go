// Package router wires the canonical handler set to its routes. Every
// endpoint is registered exactly once here; there is no dispatch on raw
// path strings anywhere else.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/skillforge/quest-backend/internal/handler"
	"github.com/skillforge/quest-backend/internal/middleware"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Verify   *handler.VerifyHandler
	Reset    *handler.ResetHandler
	Progress *handler.ProgressHandler
	Activity *handler.ActivityHandler
	Modules  *handler.ModuleHandler
	Upload   *handler.UploadHandler
}

// RegisterRoutes sets up CORS and maps every endpoint. Public routes carry
// no auth middleware; bearer routes run SessionAuth; the module write path
// additionally runs RequireAdmin. moduleCache may be nil.
func RegisterRoutes(e *echo.Echo, h Handlers, sessions middleware.SessionResolver, allowedOrigins []string, moduleCache echo.MiddlewareFunc) {
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", handler.Health)

	users := e.Group("/api/users")
	users.POST("/register", h.Auth.Register)
	users.POST("/login", h.Auth.Login)
	users.POST("/verify/start", h.Verify.Start)
	// verification links arrive as GET from email clients and as POST from
	// the web client; both consume the same token
	users.GET("/verify", h.Verify.Complete)
	users.POST("/verify", h.Verify.Complete)
	users.POST("/reset/start", h.Reset.Start)
	users.POST("/reset/complete", h.Reset.Complete)

	authed := users.Group("", middleware.SessionAuth(sessions))
	authed.GET("/me", h.Auth.Me)
	authed.PUT("/progress", h.Progress.Update)
	authed.POST("/activity", h.Activity.Create)

	if moduleCache != nil {
		e.GET("/api/modules", h.Modules.Get, moduleCache)
	} else {
		e.GET("/api/modules", h.Modules.Get)
	}
	e.POST("/api/modules", h.Modules.Put, middleware.SessionAuth(sessions), middleware.RequireAdmin())

	e.POST("/upload", h.Upload.Upload)
	e.Static("/uploads", h.Upload.Dir)
}
