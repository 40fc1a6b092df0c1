package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, app *testApp) string {
	t.Helper()
	app.do(http.MethodPost, "/api/users/register",
		`{"name":"Admin","username":"admin","email":"admin@x.com","password":"adminpass"}`, "")
	verifyOnly(t, app, "admin@x.com")
	app.users.mu.Lock()
	for _, u := range app.users.users {
		if u.Email == "admin@x.com" {
			u.IsAdmin = true
		}
	}
	app.users.mu.Unlock()
	rec := app.do(http.MethodPost, "/api/users/login",
		`{"identity":"admin@x.com","password":"adminpass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)["token"].(string)
}

func TestModules_GetEmpty(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/modules", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestModules_GetStoreUnavailable(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	app.modules.down = true

	rec := app.do(http.MethodGet, "/api/modules", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestModules_PostRequiresAdmin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	// no token at all -> 401
	rec := app.do(http.MethodPost, "/api/modules", `[]`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid session without the admin flag -> 403
	token := loginVerified(t, app)
	rec = app.do(http.MethodPost, "/api/modules", `[]`, token)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestModules_PostRejectsNonArray(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := adminToken(t, app)

	rec := app.do(http.MethodPost, "/api/modules", `{"not":"an array"}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModules_RoundTrip(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := adminToken(t, app)

	payload := `[{"id":"m1","title":"Basics","lessons":[1,2,3]},{"id":"m2","title":"Advanced"}]`
	rec := app.do(http.MethodPost, "/api/modules", payload, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["ok"])

	rec = app.do(http.MethodGet, "/api/modules", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, payload, rec.Body.String())

	// last writer wins: a second POST replaces the document wholesale
	rec = app.do(http.MethodPost, "/api/modules", `[{"id":"m3"}]`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(http.MethodGet, "/api/modules", "", "")
	require.JSONEq(t, `[{"id":"m3"}]`, rec.Body.String())

	// every successful write drops cached GET responses
	require.Equal(t, 2, app.cacheDrops)
}

func TestModules_FailedPostDoesNotInvalidateCache(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := adminToken(t, app)

	rec := app.do(http.MethodPost, "/api/modules", `{"not":"an array"}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	app.modules.down = true
	rec = app.do(http.MethodPost, "/api/modules", `[1]`, token)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.Zero(t, app.cacheDrops)
}

func TestModules_PostStoreUnavailable(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := adminToken(t, app)
	app.modules.down = true

	rec := app.do(http.MethodPost, "/api/modules", `[1,2]`, token)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestActivity_CreatesRow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := loginVerified(t, app)

	rec := app.do(http.MethodPost, "/api/users/activity",
		`{"course_id":"c-101","event_type":"quiz_passed","xp_awarded":15,"coins_awarded":3,"metadata":{"score":98}}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["ok"])
	require.NotEmpty(t, body["id"])

	require.Len(t, app.activities.rows, 1)
	row := app.activities.rows[0]
	require.Equal(t, "c-101", row.CourseID)
	require.Equal(t, "quiz_passed", row.EventType)
	require.Equal(t, 15, row.XPAwarded)
	require.Equal(t, 3, row.CoinsAwarded)
	require.JSONEq(t, `{"score":98}`, string(row.Metadata))
}

func TestActivity_DefaultsAndScalarMetadataDropped(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	token := loginVerified(t, app)

	rec := app.do(http.MethodPost, "/api/users/activity", `{"metadata":"just a string"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	row := app.activities.rows[0]
	require.Equal(t, "course_completed", row.EventType)
	require.Nil(t, row.Metadata)

	var raw json.RawMessage = row.Metadata
	require.Nil(t, raw)
}

func TestActivity_RequiresAuth(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/users/activity", `{}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
