package server

import (
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/hnrobert/remlogon/internal/audit"
	"github.com/hnrobert/remlogon/internal/auth"
	"github.com/hnrobert/remlogon/internal/credential"
	"github.com/hnrobert/remlogon/internal/fields"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options carries the wired dependencies of the logon surface.
type Options struct {
	Validator credential.Validator
	Audit     *audit.Store

	// JWTSecret may be base64 (raw URL encoding) or a plain string. Empty
	// generates an ephemeral secret, invalidating sessions on restart.
	JWTSecret string

	// NoticePath is an optional markdown file rendered on the logon page.
	NoticePath string

	// ConfirmSession runs a throwaway login shell after an accepted attempt
	// to verify the freshly synced local password actually works.
	ConfirmSession bool
}

type App struct {
	secret     []byte
	cookieName string
	pages      map[string]*template.Template
	provider   *credential.Provider
	audits     *audit.Store

	noticeHTML     template.HTML
	confirmSession bool

	// One credential tile, one attempt at a time.
	mu sync.Mutex
}

type ViewData struct {
	Fields     []FieldView
	Flash      string
	FlashKind  string // ok|err|""
	NoticeHTML template.HTML

	Username string
	Domain   string
	Records  []audit.Record
}

// FieldView is a field descriptor flattened for the templates.
type FieldView struct {
	Index    int
	Label    string
	Tag      string
	Image    bool
	Heading  bool
	Username bool
	Password bool
	Submit   bool
	Focused  bool
}

func newApp(opts Options) (*App, error) {
	secretText := opts.JWTSecret
	if secretText == "" {
		// Generate ephemeral secret if not configured.
		s, err := auth.NewRandomSecretB64(32)
		if err != nil {
			return nil, err
		}
		secretText = s
	}
	secretRaw, err := base64.RawURLEncoding.DecodeString(secretText)
	if err != nil {
		// Fallback: accept raw string.
		secretRaw = []byte(secretText)
	}
	if len(secretRaw) < 16 {
		// Avoid trivially weak secrets.
		pad := make([]byte, 16)
		copy(pad, secretRaw)
		secretRaw = pad
	}

	base := template.New("layout.html")
	pages := map[string]*template.Template{}
	for _, page := range []string{"login", "status"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		// Each page file defines the same block names (title/content).
		if _, err := t.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html"); err != nil {
			return nil, err
		}
		pages[page] = t
	}

	a := &App{
		secret:         secretRaw,
		cookieName:     auth.DefaultCookieName,
		pages:          pages,
		provider:       credential.NewProvider(opts.Validator),
		audits:         opts.Audit,
		confirmSession: opts.ConfirmSession,
	}
	if opts.NoticePath != "" {
		a.noticeHTML = loadNotice(opts.NoticePath)
	}
	return a, nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.requireAuth(a.handleLogout))
	mux.HandleFunc("/", a.requireAuth(a.handleStatus))

	mux.HandleFunc("/api/fields", a.handleFields)
	mux.HandleFunc("/api/attempts", a.requireAuth(a.handleAttempts))

	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	return a.withAuthContext(mux)
}

// fieldViews flattens the provider's field table for rendering.
func (a *App) fieldViews() []FieldView {
	views := make([]FieldView, 0, a.provider.FieldCount())
	for i := 0; i < a.provider.FieldCount(); i++ {
		d, err := a.provider.FieldAt(i)
		if err != nil {
			continue
		}
		views = append(views, FieldView{
			Index:    i,
			Label:    d.Label,
			Tag:      string(d.Tag),
			Image:    d.Kind == fields.KindImage,
			Heading:  d.Kind == fields.KindLabel,
			Username: d.Kind == fields.KindUsernameInput,
			Password: d.Kind == fields.KindPasswordInput,
			Submit:   d.Kind == fields.KindSubmitButton,
			Focused:  d.Interactive == fields.InteractiveFocused,
		})
	}
	return views
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   -1,
	})
}
