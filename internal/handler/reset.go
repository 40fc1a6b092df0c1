package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/quest-backend/internal/config"
	"github.com/skillforge/quest-backend/internal/mailer"
	"github.com/skillforge/quest-backend/internal/utils"
)

// resetTTL bounds how long a password-reset token stays usable.
const resetTTL = time.Hour

// ResetHandler implements the password reset flow: a short-lived token is
// stored on the user row, then consumed together with the new password in
// one conditional update.
type ResetHandler struct {
	Cfg   config.Config
	Users UserStore
	Mail  mailer.Sender
}

func NewResetHandler(cfg config.Config, u UserStore, m mailer.Sender) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Users: u, Mail: m}
}

type resetStartReq struct {
	Identity string `json:"identity"` // email address
}

type resetCompleteReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Start issues a reset token with a one-hour expiry. Token and expiry are
// written as a pair; 404 when no row matches the address. The email is
// best-effort, like verification.
func (h *ResetHandler) Start(c echo.Context) error {
	var req resetStartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Identity))
	if email == "" || !strings.Contains(email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "provide an email"})
	}

	token, err := utils.NewURLToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "token generation failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Users.SetResetToken(ctx, email, token, time.Now().UTC().Add(resetTTL))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "token": nil})
	}

	emailSent := h.sendResetMail(c, email, token)
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "token": token, "email_sent": emailSent})
}

func (h *ResetHandler) sendResetMail(c echo.Context, email, token string) bool {
	host := c.Request().Host
	if host == "" {
		host = "localhost:8000"
	}
	pageURL := fmt.Sprintf("http://%s/reset.html?token=%s", host, token)
	text := "A password reset was requested for your account.\n\n" +
		"Open this link to choose a new password: " + pageURL + "\n\n" +
		"The link expires in one hour. If you did not request this, ignore this email.\n"
	html := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href='%s'>Choose a new password</a> (expires in one hour)</p>"+
			"<p>If you did not request this, ignore this email.</p>",
		pageURL)

	sent, err := h.Mail.Send(email, "Reset your Quest password", text, html)
	if err != nil {
		log.Printf("reset: mail send to %s failed: %v", email, err)
	}
	return sent
}

// Complete hashes the new password and consumes the token while it is still
// unexpired. A zero-row update means the token is unknown, already used or
// expired; all three answer 400.
func (h *ResetHandler) Complete(c echo.Context) error {
	var req resetCompleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "missing token or password"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "password hashing failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Users.ConsumeResetToken(ctx, req.Token, hash)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid or expired token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
