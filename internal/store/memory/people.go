package memory

import (
	"context"
	"sort"
	"strings"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

// ── Students ──

func (s *Store) CreateStudent(_ context.Context, st models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[st.ID]; ok {
		return store.ErrConflict
	}
	if s.studentClashLocked(st) {
		return store.ErrConflict
	}
	s.students[st.ID] = st
	return nil
}

func (s *Store) GetStudent(_ context.Context, id string) (models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return models.Student{}, store.ErrNotFound
	}
	return st, nil
}

func (s *Store) GetStudentByUser(_ context.Context, userID string) (models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.UserID == userID {
			return st, nil
		}
	}
	return models.Student{}, store.ErrNotFound
}

func (s *Store) ListStudents(_ context.Context, filter store.StudentFilter) ([]models.Student, error) {
	s.mu.RLock()
	out := []models.Student{}
	for _, st := range s.students {
		if filter.ClassName != "" && st.ClassName != filter.ClassName {
			continue
		}
		out = append(out, st)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName == out[j].FullName {
			return out[i].ID < out[j].ID
		}
		return out[i].FullName < out[j].FullName
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) UpdateStudent(_ context.Context, st models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[st.ID]; !ok {
		return store.ErrNotFound
	}
	if s.studentClashLocked(st) {
		return store.ErrConflict
	}
	s.students[st.ID] = st
	return nil
}

func (s *Store) DeleteStudent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.students, id)
	return nil
}

func (s *Store) StudentEmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, st := range s.students {
		if id != excludeID && strings.EqualFold(st.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) StudentCardIDTaken(_ context.Context, cardID, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, st := range s.students {
		if id != excludeID && st.StudentCardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) studentClashLocked(candidate models.Student) bool {
	for id, st := range s.students {
		if id == candidate.ID {
			continue
		}
		if st.UserID == candidate.UserID || st.StudentCardID == candidate.StudentCardID ||
			strings.EqualFold(st.Email, candidate.Email) {
			return true
		}
	}
	return false
}

// ── Professors ──

func (s *Store) CreateProfessor(_ context.Context, p models.Professor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.professors[p.ID]; ok {
		return store.ErrConflict
	}
	if s.professorClashLocked(p) {
		return store.ErrConflict
	}
	s.professors[p.ID] = p
	return nil
}

func (s *Store) GetProfessor(_ context.Context, id string) (models.Professor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.professors[id]
	if !ok {
		return models.Professor{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProfessorByUser(_ context.Context, userID string) (models.Professor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.professors {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.Professor{}, store.ErrNotFound
}

func (s *Store) ListProfessors(_ context.Context, filter store.ProfessorFilter) ([]models.Professor, error) {
	s.mu.RLock()
	out := []models.Professor{}
	for _, p := range s.professors {
		if filter.Department != "" && (p.Department == nil || *p.Department != filter.Department) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName == out[j].FullName {
			return out[i].ID < out[j].ID
		}
		return out[i].FullName < out[j].FullName
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) UpdateProfessor(_ context.Context, p models.Professor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.professors[p.ID]; !ok {
		return store.ErrNotFound
	}
	if s.professorClashLocked(p) {
		return store.ErrConflict
	}
	s.professors[p.ID] = p
	return nil
}

func (s *Store) DeleteProfessor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.professors[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.professors, id)
	return nil
}

func (s *Store) ProfessorEmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, p := range s.professors {
		if id != excludeID && strings.EqualFold(p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) professorClashLocked(candidate models.Professor) bool {
	for id, p := range s.professors {
		if id == candidate.ID {
			continue
		}
		if p.UserID == candidate.UserID || strings.EqualFold(p.Email, candidate.Email) {
			return true
		}
	}
	return false
}
