package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const (
	msgProfessorNotFound   = "Professor not found"
	msgProfessorEmailTaken = "Professor with this email already exists"
)

type NewProfessor struct {
	UserID      string
	FullName    string
	Email       string
	Department  *string
	PhoneNumber *string
	Office      *string
}

type ProfessorPatch struct {
	FullName    *string
	Email       *string
	Department  *string
	PhoneNumber *string
	Office      *string
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type ProfessorStats struct {
	Total                  int               `json:"total_professors"`
	UniqueDepartments      int               `json:"unique_departments"`
	WithPhone              int               `json:"professors_with_phone"`
	WithOffice             int               `json:"professors_with_office"`
	DepartmentDistribution []DepartmentCount `json:"department_distribution"`
}

type ProfessorService struct {
	Store store.Store
	Clock clock.Clock
}

func (s ProfessorService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

func (s ProfessorService) Create(ctx context.Context, in NewProfessor) (models.Professor, error) {
	if _, err := s.Store.GetUser(ctx, in.UserID); err != nil {
		return models.Professor{}, storeErr(err, msgUserNotFound, "", "load user")
	}
	if _, err := s.Store.GetProfessorByUser(ctx, in.UserID); err == nil {
		return models.Professor{}, ErrConflict("User already has a professor profile")
	} else if !isNotFound(err) {
		return models.Professor{}, WrapError(err, "check professor profile")
	}
	professor := models.Professor{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		FullName:    strings.TrimSpace(in.FullName),
		Email:       normalizeEmail(in.Email),
		Department:  in.Department,
		PhoneNumber: in.PhoneNumber,
		Office:      in.Office,
		CreatedAt:   s.now(),
	}
	if err := s.checkEmail(ctx, professor); err != nil {
		return models.Professor{}, err
	}
	if err := s.Store.CreateProfessor(ctx, professor); err != nil {
		return models.Professor{}, storeErr(err, msgUserNotFound, "Professor profile already exists", "create professor")
	}
	return professor, nil
}

func (s ProfessorService) Get(ctx context.Context, id string) (models.Professor, error) {
	p, err := s.Store.GetProfessor(ctx, id)
	return p, storeErr(err, msgProfessorNotFound, "", "load professor")
}

func (s ProfessorService) GetByUser(ctx context.Context, userID string) (models.Professor, error) {
	p, err := s.Store.GetProfessorByUser(ctx, userID)
	return p, storeErr(err, "Professor profile not found for this user", "", "load professor")
}

func (s ProfessorService) List(ctx context.Context, filter store.ProfessorFilter) ([]models.Professor, error) {
	items, err := s.Store.ListProfessors(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list professors")
	}
	return items, nil
}

func (s ProfessorService) Update(ctx context.Context, id string, patch ProfessorPatch) (models.Professor, error) {
	professor, err := s.Store.GetProfessor(ctx, id)
	if err != nil {
		return models.Professor{}, storeErr(err, msgProfessorNotFound, "", "load professor")
	}
	if patch.FullName != nil {
		professor.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		professor.Email = normalizeEmail(*patch.Email)
	}
	if patch.Department != nil {
		professor.Department = patch.Department
	}
	if patch.PhoneNumber != nil {
		professor.PhoneNumber = patch.PhoneNumber
	}
	if patch.Office != nil {
		professor.Office = patch.Office
	}
	if err := s.checkEmail(ctx, professor); err != nil {
		return models.Professor{}, err
	}
	if err := s.Store.UpdateProfessor(ctx, professor); err != nil {
		return models.Professor{}, storeErr(err, msgProfessorNotFound, msgProfessorEmailTaken, "update professor")
	}
	return professor, nil
}

func (s ProfessorService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteProfessor(ctx, id), msgProfessorNotFound, "", "delete professor")
}

func (s ProfessorService) Stats(ctx context.Context) (ProfessorStats, error) {
	professors, err := s.Store.ListProfessors(ctx, store.ProfessorFilter{})
	if err != nil {
		return ProfessorStats{}, WrapError(err, "professor stats")
	}
	stats := ProfessorStats{Total: len(professors), DepartmentDistribution: []DepartmentCount{}}
	departments := map[string]int{}
	for _, p := range professors {
		if p.Department != nil && *p.Department != "" {
			departments[*p.Department]++
		}
		if p.PhoneNumber != nil && *p.PhoneNumber != "" {
			stats.WithPhone++
		}
		if p.Office != nil && *p.Office != "" {
			stats.WithOffice++
		}
	}
	stats.UniqueDepartments = len(departments)
	for _, name := range sortedByCount(departments) {
		stats.DepartmentDistribution = append(stats.DepartmentDistribution, DepartmentCount{Department: name, Count: departments[name]})
	}
	return stats, nil
}

func (s ProfessorService) checkEmail(ctx context.Context, p models.Professor) error {
	taken, err := s.Store.ProfessorEmailTaken(ctx, p.Email, p.ID)
	if err != nil {
		return WrapError(err, "check professor email")
	}
	if taken {
		return ErrConflict(msgProfessorEmailTaken)
	}
	return nil
}
