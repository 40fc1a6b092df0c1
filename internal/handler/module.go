package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ModuleHandler serves the singleton module document: a single JSON array
// replaced wholesale on every write. Reads are public; writes require an
// admin session (enforced by middleware on the route).
type ModuleHandler struct {
	Modules    ModuleStore
	Invalidate func(ctx context.Context) // drops cached GET responses after a write; nil when uncached
}

func NewModuleHandler(m ModuleStore, invalidate func(context.Context)) *ModuleHandler {
	return &ModuleHandler{Modules: m, Invalidate: invalidate}
}

// Get returns the stored array. Nothing written yet answers 200 [] while a
// store failure answers 503; the two conditions are deliberately distinct.
func (h *ModuleHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	data, err := h.Modules.Fetch(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, []any{})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	// stored payloads are valid JSON arrays; guard against legacy rows anyway
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		return c.JSON(http.StatusOK, []any{})
	}
	return c.JSONBlob(http.StatusOK, data)
}

// Put replaces the whole document (last-writer-wins, no merge, no
// versioning). The body must be a JSON array.
func (h *ModuleHandler) Put(c echo.Context) error {
	var mods []json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&mods); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "expected a JSON array of modules"})
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "encode failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Modules.Upsert(ctx, data); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false, "error": "storage unavailable"})
	}
	// the document changed; cached GET responses are stale from here on
	if h.Invalidate != nil {
		h.Invalidate(ctx)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
