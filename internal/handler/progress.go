package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skillforge/quest-backend/internal/middleware"
	"github.com/skillforge/quest-backend/internal/model"
)

// ProgressHandler updates the four progress counters for the authenticated
// user. Field coercion is deliberately lenient: missing or non-numeric
// values become 0 rather than an error.
type ProgressHandler struct {
	Users UserStore
}

func NewProgressHandler(u UserStore) *ProgressHandler { return &ProgressHandler{Users: u} }

// Update performs a single conditional update keyed by the resolved user
// id. A zero-row result means the row vanished between resolve and update;
// that race is logged as an anomaly and answered with 404, not a crash.
func (h *ProgressHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "unauthorized"})
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}
	p := model.Progress{
		XPTotal:   intField(body, "xp_total"),
		LevelIdx:  intField(body, "level_idx"),
		XPInLevel: intField(body, "xp_in_level"),
		Wallet:    intField(body, "wallet"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Users.UpdateProgress(ctx, u.ID, p)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	if !updated {
		log.Printf("progress: user %s resolved from session but row missing", u.ID)
		return c.JSON(http.StatusNotFound, echo.Map{"ok": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// intField coerces a JSON value to int: numbers are truncated, numeric
// strings parsed, everything else (including absence) is 0.
func intField(body map[string]json.RawMessage, key string) int {
	raw, ok := body[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
