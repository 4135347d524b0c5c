package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hnrobert/remlogon/internal/audit"
	"github.com/hnrobert/remlogon/internal/auth"
	"github.com/hnrobert/remlogon/internal/credential"
	"github.com/hnrobert/remlogon/internal/fields"
	"github.com/hnrobert/remlogon/internal/logger"
	"github.com/hnrobert/remlogon/internal/logon"
	"github.com/hnrobert/remlogon/internal/remote"
	"github.com/hnrobert/remlogon/internal/session"
)

// rejectedStatusText is shown when the remote authority turned the attempt
// down. The authority's own response body is never relayed.
const rejectedStatusText = "Anmeldung abgelehnt."

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if usernameFrom(r) != "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		a.renderPage(w, "login", &ViewData{Fields: a.fieldViews(), NoticeHTML: a.noticeHTML})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get(string(fields.TagUsername)))
	password := r.Form.Get(string(fields.TagPassword))
	if username == "" || password == "" {
		a.renderLoginFlash(w, "Benutzername und Kennwort erforderlich.")
		return
	}

	res, err := a.attempt(r, username, password)
	if err != nil {
		a.renderLoginFlash(w, err.Error())
		return
	}
	if res.Outcome != logon.Accepted {
		text := res.StatusText
		if text == "" {
			if res.RemoteStatus != 0 {
				text = rejectedStatusText
			} else {
				text = logon.FallbackStatusText
			}
		}
		a.recordAttempt(r, username, res)
		a.renderLoginFlash(w, text)
		return
	}

	a.recordAttempt(r, username, res)
	if a.confirmSession {
		go a.confirmLogin(res.Credential)
	}
	tok, err := auth.SignHS256(a.secret, res.Credential.Username, res.Credential.Domain, 24*time.Hour)
	if err != nil {
		a.renderLoginFlash(w, "Sitzung konnte nicht erstellt werden.")
		return
	}
	logger.Info("User %s logged on from %s", res.Credential.Username, remoteIP(r))
	a.issueCookie(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// attempt drives the single credential tile through one host cycle: fill the
// two inputs, submit, then deselect so the password buffer is wiped again.
func (a *App) attempt(r *http.Request, username, password string) (logon.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cred, err := a.provider.CredentialAt(0)
	if err != nil {
		return logon.Result{}, err
	}
	defer func() { _ = cred.Deselected() }()

	if err := cred.SetField(fields.IndexUsername, username); err != nil {
		if errors.Is(err, credential.ErrValueTooLong) {
			return logon.Result{}, errors.New("Benutzername ist zu lang.")
		}
		return logon.Result{}, err
	}
	if err := cred.SetField(fields.IndexPassword, password); err != nil {
		if errors.Is(err, credential.ErrValueTooLong) {
			return logon.Result{}, errors.New("Kennwort ist zu lang.")
		}
		return logon.Result{}, err
	}
	return cred.Submit(r.Context()), nil
}

func (a *App) recordAttempt(r *http.Request, username string, res logon.Result) {
	if a.audits == nil {
		return
	}
	rec := audit.Record{
		Time:         time.Now(),
		Username:     username,
		RemoteIP:     remoteIP(r),
		RemoteStatus: res.RemoteStatus,
	}
	switch {
	case res.Outcome == logon.Accepted:
		rec.Outcome = audit.OutcomeAccepted
	case res.RemoteStatus != 0 && res.RemoteStatus != remote.StatusAccepted:
		rec.Outcome = audit.OutcomeRejected
	default:
		rec.Outcome = audit.OutcomeError
		rec.Detail = res.StatusText
	}
	if err := a.audits.Append(rec); err != nil {
		logger.Warn("Audit append failed: %v", err)
	}
}

// confirmLogin starts and immediately tears down a login shell to prove the
// synced local password is usable. Best effort.
func (a *App) confirmLogin(cred *logon.Serialized) {
	s, err := session.Start(context.Background(), cred)
	if err != nil {
		logger.Warn("Session check for user %s failed: %v", cred.Username, err)
		return
	}
	_ = s.Close()
	logger.Debug("Session check for user %s succeeded", cred.Username)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	username := usernameFrom(r)
	logger.Info("User %s logged out from %s", username, remoteIP(r))
	a.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data := &ViewData{
		Username: usernameFrom(r),
		Domain:   domainFrom(r),
	}
	if a.audits != nil {
		recs, err := a.audits.List()
		if err != nil {
			logger.Warn("Audit list failed: %v", err)
		}
		// Newest first, capped for display.
		for i := len(recs) - 1; i >= 0 && len(data.Records) < 20; i-- {
			data.Records = append(data.Records, recs[i])
		}
	}
	a.renderPage(w, "status", data)
}

// handleFields exposes the field table so remote hosts can enumerate the
// provider without scraping HTML.
func (a *App) handleFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, a.fieldViews())
}

func (a *App) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.audits == nil {
		writeJSON(w, []audit.Record{})
		return
	}
	recs, err := a.audits.List()
	if err != nil {
		http.Error(w, "audit journal unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, recs)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (a *App) renderLoginFlash(w http.ResponseWriter, flash string) {
	a.renderPage(w, "login", &ViewData{
		Fields:     a.fieldViews(),
		NoticeHTML: a.noticeHTML,
		Flash:      flash,
		FlashKind:  "err",
	})
}

func (a *App) renderPage(w http.ResponseWriter, page string, data *ViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := a.pages[page]
	if t == nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("renderPage template execution failed for %s: %v", page, err)
	}
}
