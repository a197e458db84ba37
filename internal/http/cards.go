package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type CardCreateRequest struct {
	UserID     string  `json:"user_id" validate:"required"`
	CardNumber string  `json:"card_number" validate:"required"`
	Status     *string `json:"status"`
}

type CardUpdateRequest struct {
	CardNumber *string `json:"card_number"`
	Status     *string `json:"status"`
}

func parseStatus(raw *string) (*models.CardStatus, error) {
	if raw == nil {
		return nil, nil
	}
	status, err := models.ParseCardStatus(*raw)
	if err != nil {
		return nil, services.ErrInvalidInput(msgInvalidStatus)
	}
	return &status, nil
}

const msgInvalidStatus = "Invalid status. Must be one of: active, lost, disabled"

func (s *Server) ListCards(w http.ResponseWriter, r *http.Request) {
	s.listCards(w, r, r.URL.Query().Get("user_id"))
}

func (s *Server) CardsByUser(w http.ResponseWriter, r *http.Request) {
	s.listCards(w, r, chi.URLParam(r, "userId"))
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request, userID string) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	cards, err := s.Cards.List(r.Context(), store.CardFilter{UserID: userID, Page: page})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(cards, cardDTO))
}

func (s *Server) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Cards.Get(r.Context(), chi.URLParam(r, "cardId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cardDTO(card))
}

func (s *Server) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CardCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	in := services.NewCard{UserID: req.UserID, CardNumber: req.CardNumber}
	if status != nil {
		in.Status = *status
	}
	card, err := s.Cards.Create(r.Context(), in)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cardDTO(card))
}

func (s *Server) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req CardUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	card, err := s.Cards.Update(r.Context(), chi.URLParam(r, "cardId"), services.CardPatch{CardNumber: req.CardNumber, Status: status})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cardDTO(card))
}

// SetCardStatus takes the new status from the status query parameter.
func (s *Server) SetCardStatus(w http.ResponseWriter, r *http.Request) {
	card, err := s.Cards.SetStatus(r.Context(), chi.URLParam(r, "cardId"), r.URL.Query().Get("status"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cardDTO(card))
}

func (s *Server) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.Cards.Delete(r.Context(), chi.URLParam(r, "cardId")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
