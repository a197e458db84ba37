package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type RoomCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Capacity int    `json:"capacity" validate:"gt=0"`
}

type RoomUpdateRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Capacity *int    `json:"capacity" validate:"omitempty,gt=0"`
}

func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	minCapacity, err := queryInt(r.URL.Query().Get("min_capacity"), 0)
	if err != nil {
		WriteServiceError(w, r, services.ErrInvalidInput("min_capacity must be an integer"))
		return
	}
	s.listRooms(w, r, store.RoomFilter{Location: r.URL.Query().Get("location"), MinCapacity: minCapacity})
}

func (s *Server) RoomsByLocation(w http.ResponseWriter, r *http.Request) {
	s.listRooms(w, r, store.RoomFilter{Location: chi.URLParam(r, "location")})
}

func (s *Server) RoomsByCapacity(w http.ResponseWriter, r *http.Request) {
	minCapacity, err := strconv.Atoi(chi.URLParam(r, "minCapacity"))
	if err != nil {
		WriteServiceError(w, r, services.ErrInvalidInput("min_capacity must be an integer"))
		return
	}
	s.listRooms(w, r, store.RoomFilter{MinCapacity: minCapacity})
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request, filter store.RoomFilter) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	filter.Page = page
	rooms, err := s.Rooms.List(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(rooms, roomDTO))
}

func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.Rooms.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, roomDTO(room))
}

func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	room, err := s.Rooms.Create(r.Context(), services.NewRoom{Name: req.Name, Location: req.Location, Capacity: req.Capacity})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, roomDTO(room))
}

func (s *Server) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	room, err := s.Rooms.Update(r.Context(), chi.URLParam(r, "roomId"), services.RoomPatch{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, roomDTO(room))
}

func (s *Server) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.Rooms.Delete(r.Context(), chi.URLParam(r, "roomId")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RoomStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Rooms.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
