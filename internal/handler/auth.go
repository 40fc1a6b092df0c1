package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel for row-not-found
	"errors"
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/google/uuid"      // server-generated user identifiers
	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/skillforge/quest-backend/internal/config"
	"github.com/skillforge/quest-backend/internal/middleware"
	"github.com/skillforge/quest-backend/internal/model"
	"github.com/skillforge/quest-backend/internal/repository"
	"github.com/skillforge/quest-backend/internal/utils"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for registration, login and profile
// endpoints. Every response uses the uniform envelope {ok, ..., error?}.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Identity string `json:"identity"` // username or email
	Password string `json:"password"`
}

// Register: validate, hash, insert the full row in one statement, then
// re-read the public projection. New users start unverified; only the
// verification endpoint can flip email_verified.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateRegistration(req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": msg})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		// no partial state: nothing has been written yet
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "password hashing failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := &model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"ok": false, "error": "Email Already Exists"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"ok": false, "error": "Username Already Exists"})
		default:
			return c.JSON(http.StatusConflict, echo.Map{"ok": false, "error": "Registration failed"})
		}
	}

	created, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		// the row exists at this point; an error status would send the
		// client into a retry that collides with its own registration
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "user": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "user": created.Public()})
}

func validateRegistration(req registerReq) string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Username == "":
		return "username is required"
	case req.Email == "":
		return "email is required"
	case !strings.Contains(req.Email, "@"):
		return "email is invalid"
	case req.Password == "":
		return "password is required"
	case len(req.Password) < 6:
		return "password must be at least 6 characters"
	}
	return ""
}

// Login: look up by email or username, verify the password, gate on
// verified email, then issue a session. Unknown identity and wrong
// password produce the identical 401 so callers cannot enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}
	req.Identity = strings.TrimSpace(req.Identity)
	if req.Identity == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "identity and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		u   model.User
		err error
	)
	if strings.Contains(req.Identity, "@") {
		u, err = h.Users.GetByEmail(ctx, strings.ToLower(req.Identity))
	} else {
		u, err = h.Users.GetByUsername(ctx, req.Identity)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "Invalid credentials"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "Invalid credentials"})
	}

	if !u.EmailVerified {
		return c.JSON(http.StatusForbidden, echo.Map{
			"ok":                 false,
			"error":              "Email not verified. Please check your inbox.",
			"needs_verification": true,
		})
	}

	s, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "user": u.Public(), "token": s.Token})
}

// Me returns the public projection of the authenticated user. The session
// middleware has already resolved the token.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, u.Public())
}
