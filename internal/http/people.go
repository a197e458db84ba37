package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

type StudentCreateRequest struct {
	UserID        string  `json:"user_id" validate:"required"`
	FullName      string  `json:"full_name" validate:"required"`
	StudentCardID string  `json:"student_card_id" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	ClassName     string  `json:"class_name" validate:"required"`
	PhoneNumber   *string `json:"phone_number"`
}

type StudentUpdateRequest struct {
	FullName      *string `json:"full_name"`
	StudentCardID *string `json:"student_card_id"`
	Email         *string `json:"email" validate:"omitempty,email"`
	ClassName     *string `json:"class_name"`
	PhoneNumber   *string `json:"phone_number"`
}

type ProfessorCreateRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	FullName    string  `json:"full_name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phone_number"`
	Office      *string `json:"office"`
}

type ProfessorUpdateRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phone_number"`
	Office      *string `json:"office"`
}

// ── Students ──

func (s *Server) ListStudents(w http.ResponseWriter, r *http.Request) {
	s.listStudents(w, r, r.URL.Query().Get("class_name"))
}

func (s *Server) StudentsByClass(w http.ResponseWriter, r *http.Request) {
	s.listStudents(w, r, chi.URLParam(r, "className"))
}

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request, className string) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	items, err := s.Students.List(r.Context(), store.StudentFilter{ClassName: className, Page: page})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(items, studentDTO))
}

func (s *Server) GetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.Students.Get(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, studentDTO(st))
}

func (s *Server) StudentByUser(w http.ResponseWriter, r *http.Request) {
	st, err := s.Students.GetByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, studentDTO(st))
}

func (s *Server) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	st, err := s.Students.Create(r.Context(), services.NewStudent{
		UserID:        req.UserID,
		FullName:      req.FullName,
		StudentCardID: req.StudentCardID,
		Email:         req.Email,
		ClassName:     req.ClassName,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, studentDTO(st))
}

func (s *Server) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	st, err := s.Students.Update(r.Context(), chi.URLParam(r, "studentId"), services.StudentPatch{
		FullName:      req.FullName,
		StudentCardID: req.StudentCardID,
		Email:         req.Email,
		ClassName:     req.ClassName,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, studentDTO(st))
}

func (s *Server) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.Students.Delete(r.Context(), chi.URLParam(r, "studentId")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) StudentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Students.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// ── Professors ──

func (s *Server) ListProfessors(w http.ResponseWriter, r *http.Request) {
	s.listProfessors(w, r, r.URL.Query().Get("department"))
}

func (s *Server) ProfessorsByDepartment(w http.ResponseWriter, r *http.Request) {
	s.listProfessors(w, r, chi.URLParam(r, "department"))
}

func (s *Server) listProfessors(w http.ResponseWriter, r *http.Request, department string) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	items, err := s.Professors.List(r.Context(), store.ProfessorFilter{Department: department, Page: page})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mapAll(items, professorDTO))
}

func (s *Server) GetProfessor(w http.ResponseWriter, r *http.Request) {
	p, err := s.Professors.Get(r.Context(), chi.URLParam(r, "professorId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professorDTO(p))
}

func (s *Server) ProfessorByUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.Professors.GetByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professorDTO(p))
}

func (s *Server) CreateProfessor(w http.ResponseWriter, r *http.Request) {
	var req ProfessorCreateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	p, err := s.Professors.Create(r.Context(), services.NewProfessor{
		UserID:      req.UserID,
		FullName:    req.FullName,
		Email:       req.Email,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Office:      req.Office,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, professorDTO(p))
}

func (s *Server) UpdateProfessor(w http.ResponseWriter, r *http.Request) {
	var req ProfessorUpdateRequest
	if err := s.decode(r, &req); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	p, err := s.Professors.Update(r.Context(), chi.URLParam(r, "professorId"), services.ProfessorPatch{
		FullName:    req.FullName,
		Email:       req.Email,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Office:      req.Office,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, professorDTO(p))
}

func (s *Server) DeleteProfessor(w http.ResponseWriter, r *http.Request) {
	if err := s.Professors.Delete(r.Context(), chi.URLParam(r, "professorId")); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ProfessorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Professors.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
