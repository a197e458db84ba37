package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type ReservationCreateRequest struct {
	RoomID            string    `json:"room_id" validate:"required"`
	StartTime         time.Time `json:"start_time" validate:"required"`
	EndTime           time.Time `json:"end_time" validate:"required"`
	ExpectedOccupants int       `json:"expected_occupants"`
	// ReservedBy defaults to the caller; only admins may book for others.
	ReservedBy string `json:"reserved_by"`
}

type ReservationUpdateRequest struct {
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	ExpectedOccupants *int       `json:"expected_occupants"`
}

func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	caller := CurrentUser(r)
	reservedBy := caller.ID
	if req.ReservedBy != "" && req.ReservedBy != caller.ID {
		if !s.allowAdmin(w, r) {
			return
		}
		reservedBy = req.ReservedBy
	}
	res, err := s.Reservations.Admit(r.Context(), services.ReservationRequest{
		RoomID:            req.RoomID,
		ReservedBy:        reservedBy,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		ExpectedOccupants: req.ExpectedOccupants,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, reservationDTO(res))
}

func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.listReservations(w, r, store.ReservationFilter{RoomID: q.Get("room_id"), UserID: q.Get("user_id")})
}

func (s *Server) ReservationsByRoom(w http.ResponseWriter, r *http.Request) {
	s.listReservations(w, r, store.ReservationFilter{RoomID: chi.URLParam(r, "roomId")})
}

func (s *Server) ReservationsByUser(w http.ResponseWriter, r *http.Request) {
	s.listReservations(w, r, store.ReservationFilter{UserID: chi.URLParam(r, "userId")})
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request, filter store.ReservationFilter) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	filter.Page = page
	items, err := s.Reservations.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(items, reservationDTO))
}

func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.Reservations.Get(r.Context(), chi.URLParam(r, "reservationId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reservationDTO(res))
}

func (s *Server) RoomAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := queryTime(r, "start_time")
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	end, err := queryTime(r, "end_time")
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	avail, err := s.Reservations.Availability(r.Context(), chi.URLParam(r, "roomId"), start, end)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, availabilityDTO(avail))
}

func (s *Server) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "reservationId")
	if !s.allowOwner(w, r, id) {
		return
	}
	res, err := s.Reservations.Update(r.Context(), id, services.ReservationPatch{
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		ExpectedOccupants: req.ExpectedOccupants,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reservationDTO(res))
}

func (s *Server) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reservationId")
	if !s.allowOwner(w, r, id) {
		return
	}
	if err := s.Reservations.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ReservationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Reservations.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// allowOwner lets the reservation's owner or an admin through. It writes the
// error response itself when it returns false.
func (s *Server) allowOwner(w http.ResponseWriter, r *http.Request, id string) bool {
	res, err := s.Reservations.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return false
	}
	if res.ReservedBy == CurrentUser(r).ID {
		return true
	}
	return s.allowAdmin(w, r)
}

func (s *Server) allowAdmin(w http.ResponseWriter, r *http.Request) bool {
	ok, err := s.hasRole(r, models.RoleAdmin)
	if err != nil {
		WriteServiceError(w, r, err)
		return false
	}
	if !ok {
		WriteError(w, http.StatusForbidden, "forbidden", msgNotAllowed)
	}
	return ok
}
