package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/remlogon/internal/audit"
	"github.com/hnrobert/remlogon/internal/logon"
)

type fakeValidator struct {
	result logon.Result
	gotU   string
	gotP   string
	calls  int
}

func (f *fakeValidator) Attempt(ctx context.Context, username, password string) logon.Result {
	f.calls++
	f.gotU = username
	f.gotP = password
	return f.result
}

func acceptedResult(username string) logon.Result {
	return logon.Result{
		Outcome:      logon.Accepted,
		RemoteStatus: http.StatusNoContent,
		Credential:   &logon.Serialized{Username: username, Domain: "CLINIC", Password: "pw"},
	}
}

func newTestApp(t *testing.T, v *fakeValidator) *App {
	t.Helper()
	store := audit.NewStore(filepath.Join(t.TempDir(), "attempts.json"), 10)
	require.NoError(t, store.Ensure())
	app, err := newApp(Options{
		Validator: v,
		Audit:     store,
		JWTSecret: "test-secret-test-secret",
	})
	require.NoError(t, err)
	return app
}

func postLogin(h http.Handler, username, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("logon-username", username)
	form.Set("logon-password", password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginPageRendersFields(t *testing.T) {
	app := newTestApp(t, &fakeValidator{})
	h := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Vivendi-Anmeldung")
	assert.Contains(t, body, "Benutzername")
	assert.Contains(t, body, "Kennwort")
	assert.Contains(t, body, "Anmelden")
	assert.Contains(t, body, `name="logon-username"`)
	assert.Contains(t, body, `type="password"`)
}

func TestLoginMissingInput(t *testing.T) {
	v := &fakeValidator{}
	app := newTestApp(t, v)
	h := app.routes()

	rec := postLogin(h, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Benutzername und Kennwort erforderlich.")
	assert.Zero(t, v.calls)
}

func TestLoginAccepted(t *testing.T) {
	v := &fakeValidator{result: acceptedResult("alice")}
	app := newTestApp(t, v)
	h := app.routes()

	rec := postLogin(h, "alice", "secret")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "alice", v.gotU)
	assert.Equal(t, "secret", v.gotP)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == app.cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)

	// The cookie authenticates the status page.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
	assert.Contains(t, rec.Body.String(), "CLINIC")

	recs, err := app.audits.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, audit.OutcomeAccepted, recs[0].Outcome)
	assert.Equal(t, "alice", recs[0].Username)
}

func TestLoginRemoteRejected(t *testing.T) {
	v := &fakeValidator{result: logon.Result{
		Outcome:      logon.NotFinished,
		RemoteStatus: http.StatusUnauthorized,
		StatusIcon:   logon.IconError,
	}}
	app := newTestApp(t, v)
	h := app.routes()

	rec := postLogin(h, "alice", "wrong")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Anmeldung abgelehnt.")
	assert.NotContains(t, body, "wrong")

	recs, err := app.audits.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, audit.OutcomeRejected, recs[0].Outcome)
	assert.Equal(t, http.StatusUnauthorized, recs[0].RemoteStatus)
}

func TestLoginLocalFailureFallsBack(t *testing.T) {
	v := &fakeValidator{result: logon.Result{
		Outcome:    logon.NotFinished,
		StatusText: logon.FallbackStatusText,
		StatusIcon: logon.IconError,
	}}
	app := newTestApp(t, v)
	h := app.routes()

	rec := postLogin(h, "alice", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fehler bei der Anmeldung.")

	recs, err := app.audits.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, audit.OutcomeError, recs[0].Outcome)
}

func TestLoginOversizedUsername(t *testing.T) {
	v := &fakeValidator{}
	app := newTestApp(t, v)
	h := app.routes()

	rec := postLogin(h, strings.Repeat("a", 300), "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zu lang")
	assert.Zero(t, v.calls)
}

func TestStatusRequiresAuth(t *testing.T) {
	app := newTestApp(t, &fakeValidator{})
	h := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestFieldsEndpoint(t *testing.T) {
	app := newTestApp(t, &fakeValidator{})
	h := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/fields", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []FieldView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 5)
	assert.True(t, views[2].Username)
	assert.True(t, views[2].Focused)
	assert.True(t, views[4].Submit)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, &fakeValidator{})
	h := app.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestNoticeRendered(t *testing.T) {
	notice := filepath.Join(t.TempDir(), "notice.md")
	require.NoError(t, os.WriteFile(notice, []byte("**Wartung** am Sonntag"), 0o600))

	store := audit.NewStore(filepath.Join(t.TempDir(), "attempts.json"), 10)
	require.NoError(t, store.Ensure())
	app, err := newApp(Options{
		Validator:  &fakeValidator{},
		Audit:      store,
		JWTSecret:  "test-secret-test-secret",
		NoticePath: notice,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	b, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(b), "<strong>Wartung</strong>")
}
