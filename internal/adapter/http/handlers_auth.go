// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
)

func (s *Server) handleRegisterOrLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.auth.RegisterOrLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	tok, err := s.tokens.Issue(user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.setAuthCookie(w, tok)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "username": user.Username})
}

// Logout only clears the client-held cookie; the token itself stays
// verifiable until expiry because the server keeps no session state.
// Idempotent for anonymous callers.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := s.identity(r)
	if id == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"username": id.Username}})
}
