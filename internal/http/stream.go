package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"campus-access-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AccessLogSocket streams new access logs to admins. Browsers cannot set
// headers on websocket requests, so the token travels in the query string.
func (s *Server) AccessLogSocket(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Event stream is disabled")
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "auth_failed", "Not authenticated")
		return
	}
	user, err := s.authenticate(r.Context(), token)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	isAdmin := user.Role == models.RoleAdmin
	if !isAdmin {
		if isAdmin, err = s.Users.HasRole(r.Context(), user.ID, models.RoleAdmin); err != nil {
			WriteServiceError(w, r, err)
			return
		}
	}
	if !isAdmin {
		WriteError(w, http.StatusForbidden, "forbidden", msgNotAllowed)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Hub.Add(conn)
	defer func() {
		s.Hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
