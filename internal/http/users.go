package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
)

type UserCreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin student professor"`
}

type UserUpdateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin student professor"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin student professor"`
}

type RolesResponse struct {
	UserID string        `json:"user_id"`
	Roles  []models.Role `json:"roles"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	users, err := s.Users.List(r.Context(), page)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(users, userDTO))
}

func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		WriteServiceError(w, r, services.ErrInvalidInput(err.Error()))
		return
	}
	user, err := s.Users.Create(r.Context(), services.NewUser{Email: req.Email, Password: req.Password, Role: role})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, userDTO(user))
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Users.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, userDTO(user))
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	patch := services.UserPatch{Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			WriteServiceError(w, r, services.ErrInvalidInput(err.Error()))
			return
		}
		patch.Role = &role
	}
	user, err := s.Users.Update(r.Context(), chi.URLParam(r, "userId"), patch)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, userDTO(user))
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.Delete(r.Context(), chi.URLParam(r, "userId")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	roles, err := s.Users.Roles(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, RolesResponse{UserID: userID, Roles: roles})
}

func (s *Server) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		WriteServiceError(w, r, services.ErrInvalidInput(err.Error()))
		return
	}
	if err := s.Users.AddRole(r.Context(), chi.URLParam(r, "userId"), role); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	s.ListUserRoles(w, r)
}

func (s *Server) RemoveRole(w http.ResponseWriter, r *http.Request) {
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		WriteServiceError(w, r, services.ErrInvalidInput(err.Error()))
		return
	}
	if err := s.Users.RemoveRole(r.Context(), chi.URLParam(r, "userId"), role); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
