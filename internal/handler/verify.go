package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/quest-backend/internal/mailer"
	"github.com/skillforge/quest-backend/internal/utils"
)

// VerifyHandler implements the email verification flow. A user starts in
// the pending state and transitions to verified exactly once, by consuming
// the token stored on their row.
type VerifyHandler struct {
	Users UserStore
	Mail  mailer.Sender
}

func NewVerifyHandler(u UserStore, m mailer.Sender) *VerifyHandler {
	return &VerifyHandler{Users: u, Mail: m}
}

type verifyStartReq struct {
	Identity string `json:"identity"` // email address
}

// Start generates a fresh URL-safe token and stores it on the matching user
// row, overwriting any prior pending token. The notification send only
// happens after the store update succeeded, and a delivery failure is
// reported in the body (email_sent / email_error) without changing the
// HTTP status: the token was issued regardless of mail delivery.
func (h *VerifyHandler) Start(c echo.Context) error {
	var req verifyStartReq
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

	ok, err := h.Users.SetVerificationToken(ctx, email, token)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false, "token": nil, "email_sent": false})
	}

	emailSent, sendErr := h.sendVerificationMail(c, email, token)
	body := echo.Map{"ok": true, "token": token, "email_sent": emailSent}
	if sendErr != nil {
		body["email_error"] = sendErr.Error()
	}
	return c.JSON(http.StatusOK, body)
}

func (h *VerifyHandler) sendVerificationMail(c echo.Context, email, token string) (bool, error) {
	host := c.Request().Host
	if host == "" {
		host = "localhost:8000"
	}
	pageURL := fmt.Sprintf("http://%s/verify.html?token=%s", host, token)
	apiURL := fmt.Sprintf("http://%s/api/users/verify?token=%s", host, token)

	text := "Thanks for signing up!\n\n" +
		"Click the link to verify your email: " + pageURL + "\n\n" +
		"If the above link doesn't work, you can use this direct link: " + apiURL + "\n"
	html := fmt.Sprintf(
		"<p>Thanks for signing up!</p>"+
			"<p><a href='%s'>Click here to verify your email</a></p>"+
			"<p>If the above link doesn't work, use this direct link:<br/><code>%s</code></p>",
		pageURL, apiURL)

	sent, err := h.Mail.Send(email, "Verify your Quest account", text, html)
	if err != nil {
		log.Printf("verify: mail send to %s failed: %v", email, err)
	}
	return sent, err
}

// Complete consumes a verification token supplied as a query parameter.
// The single conditional update is the consume-once guarantee: a second
// call with the same token matches zero rows and returns 404.
func (h *VerifyHandler) Complete(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "missing token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Users.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
