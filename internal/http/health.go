package httpapi

import (
	"net/http"
	"time"
)

type StatusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) Liveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, StatusResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	if s.Health.DB == nil || !s.Health.Database(r.Context()).Healthy {
		WriteJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "not ready", Timestamp: time.Now().UTC()})
		return
	}
	WriteJSON(w, http.StatusOK, StatusResponse{Status: "ready", Timestamp: time.Now().UTC()})
}

func (s *Server) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	if s.Health.DB == nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Database is not configured")
		return
	}
	report := s.Health.Detailed(r.Context())
	status := http.StatusOK
	if !report.Database.Healthy {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, report)
}
