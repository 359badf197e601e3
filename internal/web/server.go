// Package web serves the server-rendered dashboard staff use to look up a
// krama and record payment of their tagihan.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/krama-desa/iuran/internal/auth"
	"github.com/krama-desa/iuran/internal/cache"
	"github.com/krama-desa/iuran/internal/dashboard"
	"github.com/krama-desa/iuran/internal/middleware"
	"github.com/krama-desa/iuran/internal/money"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	MsgBlankIdentifier = "Mohon masukkan ID atau NIK Krama."
	MsgPaymentRecorded = "Pembayaran berhasil dicatat!"
	MsgLoginFailed     = "Email atau kata sandi salah."

	DefaultNotificationTTL = 5 * time.Second
)

// Config wires a Server.
type Config struct {
	Registry      *dashboard.Registry
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Formatter     *money.Formatter

	// NotificationTTL is how long a notification stays on screen.
	NotificationTTL time.Duration

	Logger *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Server renders the dashboard.
type Server struct {
	registry  *dashboard.Registry
	auth      auth.Authenticator
	jwt       *auth.JWTManager
	formatter *money.Formatter
	noteTTL   time.Duration
	views     *cache.TTLCache[string, *uiState]
	logger    *slog.Logger
	now       func() time.Time

	dashboardTmpl *template.Template
	loginTmpl     *template.Template
}

// New parses the templates and builds a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil || cfg.Authenticator == nil || cfg.JWT == nil {
		return nil, errors.New("web: registry, authenticator and JWT manager are required")
	}

	s := &Server{
		registry:  cfg.Registry,
		auth:      cfg.Authenticator,
		jwt:       cfg.JWT,
		formatter: cfg.Formatter,
		noteTTL:   cfg.NotificationTTL,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.formatter == nil {
		s.formatter = money.Rupiah()
	}
	if s.noteTTL <= 0 {
		s.noteTTL = DefaultNotificationTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.views = cache.NewWithClock[string, *uiState](s.now)

	var err error
	if s.dashboardTmpl, err = template.ParseFS(templateFS, "templates/base.html", "templates/dashboard.html"); err != nil {
		return nil, err
	}
	if s.loginTmpl, err = template.ParseFS(templateFS, "templates/base.html", "templates/login.html"); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the dashboard routes. Callers may mount more handlers on
// it before serving.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.jwt, "/login"))
		r.Get("/", s.handleDashboard)
		r.Post("/search", s.handleSearch)
		r.Post("/checkout", s.handleCheckout)
		r.Post("/checkout/{proposalID}/confirm", s.handleConfirm)
		r.Post("/checkout/{proposalID}/cancel", s.handleCancel)
		r.Post("/notification/dismiss", s.handleDismiss)
	})
	return r
}

// session resolves the dashboard state and view state of the request.
func (s *Server) session(r *http.Request) (*auth.Claims, *dashboard.State, *uiState) {
	claims := middleware.GetClaims(r.Context())
	state := s.registry.Get(claims.SessionID, dashboard.Identity{
		StaffID:    claims.StaffID,
		RecordedBy: claims.BackendID,
	})
	ui, _ := s.views.GetOrCreate(claims.SessionID, s.jwt.TokenDuration(), func() *uiState {
		return &uiState{}
	})
	return claims, state, ui
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, state, ui := s.session(r)
	query, note, remaining := ui.current(s.now(), s.noteTTL)
	page := newDashboardPage(claims.Name, query, state.Snapshot(), note, remaining, s.formatter)
	s.render(w, s.dashboardTmpl, http.StatusOK, page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_, state, ui := s.session(r)
	ui.dismiss()
	raw := r.PostFormValue("identifier")
	ui.setQuery(raw)

	identifier := strings.TrimSpace(raw)
	if identifier == "" {
		ui.notify(NotifyError, MsgBlankIdentifier, s.now())
		redirectHome(w, r)
		return
	}

	if err := state.FetchDetail(r.Context(), identifier); err != nil {
		// A superseded lookup leaves no error in the state.
		if msg := state.Snapshot().Error; msg != "" {
			ui.notify(NotifyError, msg, s.now())
		}
		s.logger.Warn("Lookup failed", "identifier", identifier, "error", err)
	}
	redirectHome(w, r)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	_, state, ui := s.session(r)
	ui.dismiss()
	if _, err := state.ProposeCheckout(); err != nil && !errors.Is(err, dashboard.ErrBusy) {
		ui.notify(NotifyError, dashboard.Message(err), s.now())
	}
	redirectHome(w, r)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	_, state, ui := s.session(r)
	proposalID := chi.URLParam(r, "proposalID")

	// The payment must complete even if the browser goes away.
	if _, err := state.ConfirmCheckout(context.WithoutCancel(r.Context()), proposalID); err != nil {
		ui.notify(NotifyError, dashboard.Message(err), s.now())
		redirectHome(w, r)
		return
	}
	// The payment is recorded but the follow-up lookup failed.
	if msg := state.Snapshot().Error; msg != "" {
		ui.notify(NotifyError, msg, s.now())
		redirectHome(w, r)
		return
	}
	ui.notify(NotifySuccess, MsgPaymentRecorded, s.now())
	redirectHome(w, r)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	_, state, _ := s.session(r)
	state.CancelCheckout(chi.URLParam(r, "proposalID"))
	redirectHome(w, r)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	_, _, ui := s.session(r)
	ui.dismiss()
	redirectHome(w, r)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.loginTmpl, http.StatusOK, loginPage{Expired: r.URL.Query().Get("expired") != ""})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	staff, err := s.auth.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		s.render(w, s.loginTmpl, http.StatusUnauthorized, loginPage{Email: email, Error: MsgLoginFailed})
		return
	}

	token, claims, err := s.jwt.Generate(staff)
	if err != nil {
		s.logger.Error("Failed to issue session token", "staff_id", staff.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Info("Staff logged in", "staff_id", staff.ID, "session_id", claims.SessionID)
	middleware.SetSessionCookie(w, token, claims)
	http.Redirect(w, r, middleware.SafeRedirect(r.PostFormValue("next"), "/"), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if claims, err := s.jwt.Validate(cookie.Value); err == nil {
			s.registry.Drop(claims.SessionID)
			s.views.Delete(claims.SessionID)
			s.logger.Info("Staff logged out", "staff_id", claims.StaffID, "session_id", claims.SessionID)
		}
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Sweep forgets view state of sessions that have gone idle.
func (s *Server) Sweep() int {
	return s.views.Sweep()
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("Failed to render template", "template", tmpl.Name(), "error", err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
