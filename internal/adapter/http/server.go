package adapthttp

import (
	"log/slog"
	"net/http"

	"petitdej/internal/app"
	"petitdej/internal/token"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth         *app.AuthService
	reservations *app.ReservationService
	tokens       *token.Issuer
	webDir       string
	log          *slog.Logger

	secureCookies bool
	oidcConfig    OIDCConfig
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, res *app.ReservationService, tokens *token.Issuer, webDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{auth: auth, reservations: res, tokens: tokens, webDir: webDir, log: log}
}

// WithSecureCookies marks session cookies Secure, for deployments behind
// TLS.
func (s *Server) WithSecureCookies() *Server {
	s.secureCookies = true
	return s
}

// WithOIDC enables the SSO login flow.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/register-or-login", s.handleRegisterOrLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/me", s.handleMe)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	api.HandleFunc("/reservations", s.handleListMonth)
	api.HandleFunc("/reserve", s.handleReserve)
	api.HandleFunc("/reservation/", s.handleReservation)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withSecurityHeaders(withNoCache(root)))
}
