package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type AccessLogCreateRequest struct {
	CardID     string `json:"card_id" validate:"required"`
	Location   string `json:"location" validate:"required"`
	AccessType string `json:"access_type" validate:"required"`
}

// SimulateAccess is the card-reader path: the card status decides the outcome.
func (s *Server) SimulateAccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entry, err := s.Access.Authorize(r.Context(), services.AccessAttempt{
		CardNumber: q.Get("card_number"),
		Location:   q.Get("location"),
		Requested:  q.Get("access_type"),
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, services.AccessLogEvent(entry))
}

// RecordAccess stores the requested type without consulting card status.
func (s *Server) RecordAccess(w http.ResponseWriter, r *http.Request) {
	var req AccessLogCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	entry, err := s.Access.Authorize(r.Context(), services.AccessAttempt{
		CardID:            req.CardID,
		Location:          req.Location,
		Requested:         req.AccessType,
		BypassStatusCheck: true,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, services.AccessLogEvent(entry))
}

func (s *Server) ListAccessLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.listAccessLogs(w, r, store.AccessLogFilter{CardID: q.Get("card_id"), UserID: q.Get("user_id"), Location: q.Get("location")})
}

func (s *Server) AccessLogsByCard(w http.ResponseWriter, r *http.Request) {
	s.listAccessLogs(w, r, store.AccessLogFilter{CardID: chi.URLParam(r, "cardId")})
}

func (s *Server) AccessLogsByUser(w http.ResponseWriter, r *http.Request) {
	s.listAccessLogs(w, r, store.AccessLogFilter{UserID: chi.URLParam(r, "userId")})
}

func (s *Server) AccessLogsByLocation(w http.ResponseWriter, r *http.Request) {
	s.listAccessLogs(w, r, store.AccessLogFilter{Location: chi.URLParam(r, "location")})
}

func (s *Server) listAccessLogs(w http.ResponseWriter, r *http.Request, filter store.AccessLogFilter) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	filter.Page = page
	entries, err := s.Access.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(entries, services.AccessLogEvent))
}

func (s *Server) GetAccessLog(w http.ResponseWriter, r *http.Request) {
	entry, err := s.Access.Get(r.Context(), chi.URLParam(r, "logId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, services.AccessLogEvent(entry))
}

func (s *Server) AccessStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Access.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
