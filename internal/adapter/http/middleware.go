package adapthttp

import (
	"net/http"
	"time"

	"petitdej/internal/token"
)

// cookieName is the session cookie carried by authenticated clients.
const cookieName = "auth"

// identity resolves the session cookie into an identity, or nil when the
// request carries no valid token. Invalid and absent tokens look the
// same to callers.
func (s *Server) identity(r *http.Request) *token.Identity {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	id, err := s.tokens.Resolve(cookie.Value)
	if err != nil {
		return nil
	}
	return id
}

// requireIdentity resolves the session cookie and writes a 401 when the
// request is anonymous. Protected handlers bail out before touching any
// store.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (*token.Identity, bool) {
	id := s.identity(r)
	if id == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	return id, true
}

func (s *Server) setAuthCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.Validity() / time.Second),
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
