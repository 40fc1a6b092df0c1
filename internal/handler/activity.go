package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/skillforge/quest-backend/internal/middleware"
	"github.com/skillforge/quest-backend/internal/model"
	"github.com/skillforge/quest-backend/internal/queue"
)

// ActivityHandler appends activity log rows for the authenticated user and
// publishes a matching event to the broker. Publishing is best-effort; a
// broker outage never fails the request.
type ActivityHandler struct {
	Activities ActivityStore
	Publish    func(ctx context.Context, ev queue.ActivityRecordedEvent) error // nil disables publishing
}

func NewActivityHandler(a ActivityStore, publish func(context.Context, queue.ActivityRecordedEvent) error) *ActivityHandler {
	return &ActivityHandler{Activities: a, Publish: publish}
}

// Create records one activity event. event_type defaults to
// "course_completed"; xp/coins coerce leniently like progress updates;
// metadata is kept only when it is a JSON object or array.
func (h *ActivityHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"ok": false, "error": "unauthorized"})
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "invalid body"})
	}

	eventType := strings.TrimSpace(stringField(body, "event_type"))
	if eventType == "" {
		eventType = "course_completed"
	}
	a := &model.ActivityLog{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		CourseID:     strings.TrimSpace(stringField(body, "course_id")),
		EventType:    eventType,
		XPAwarded:    intField(body, "xp_awarded"),
		CoinsAwarded: intField(body, "coins_awarded"),
		Metadata:     objectField(body, "metadata"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Activities.Insert(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"ok": false, "error": "activity log failed"})
	}

	if h.Publish != nil {
		ev := queue.ActivityRecordedEvent{
			ActivityID:   a.ID,
			UserID:       a.UserID,
			CourseID:     a.CourseID,
			EventType:    a.EventType,
			XPAwarded:    a.XPAwarded,
			CoinsAwarded: a.CoinsAwarded,
			RecordedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("activity: publish failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": a.ID})
}

func stringField(body map[string]json.RawMessage, key string) string {
	raw, ok := body[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// objectField returns the raw JSON when it is an object or array, nil otherwise.
func objectField(body map[string]json.RawMessage, key string) []byte {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	t := strings.TrimSpace(string(raw))
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return []byte(raw)
	}
	return nil
}
