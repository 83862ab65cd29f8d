package adapthttp

import (
	"net/http"
	"strings"
)

func (s *Server) handleListMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	month := r.URL.Query().Get("month")
	items, err := s.reservations.ListMonth(r.Context(), month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": items})
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Date        string `json:"date"`
		Description string `json:"description"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.reservations.Reserve(r.Context(), id.Username, req.Date, req.Description); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleReservation serves /reservation/{date}: GET returns the slot for
// anyone, DELETE cancels it for its owner.
func (s *Server) handleReservation(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/reservation/")

	switch r.Method {
	case http.MethodGet:
		res, err := s.reservations.Get(r.Context(), date)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if res == nil {
			writeJSON(w, http.StatusOK, map[string]any{"reservation": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservation": res})

	case http.MethodDelete:
		id, ok := s.requireIdentity(w, r)
		if !ok {
			return
		}
		if err := s.reservations.Cancel(r.Context(), id.Username, date); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
