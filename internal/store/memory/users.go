package memory

import (
	"context"
	"sort"
	"strings"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

func (s *Store) CreateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return store.ErrConflict
	}
	if s.emailInUseLocked(u.Email, "") {
		return store.ErrConflict
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, page store.Page) ([]models.User, error) {
	s.mu.RLock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page), nil
}

func (s *Store) UpdateUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	if s.emailInUseLocked(u.Email, u.ID) {
		return store.ErrConflict
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	delete(s.userRoles, id)
	for key, st := range s.students {
		if st.UserID == id {
			delete(s.students, key)
		}
	}
	for key, p := range s.professors {
		if p.UserID == id {
			delete(s.professors, key)
		}
	}
	for key, r := range s.reservations {
		if r.ReservedBy == id {
			delete(s.reservations, key)
		}
	}
	for key, c := range s.cards {
		if c.UserID == id {
			s.deleteCardLocked(key)
		}
	}
	return nil
}

func (s *Store) ListUserRoles(_ context.Context, userID string) ([]models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, store.ErrNotFound
	}
	roles := []models.Role{}
	for role := range s.userRoles[userID] {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles, nil
}

func (s *Store) AddUserRole(_ context.Context, userID string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return store.ErrNotFound
	}
	if s.userRoles[userID] == nil {
		s.userRoles[userID] = map[models.Role]bool{}
	}
	s.userRoles[userID][role] = true
	return nil
}

func (s *Store) RemoveUserRole(_ context.Context, userID string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.userRoles[userID][role] {
		return store.ErrNotFound
	}
	delete(s.userRoles[userID], role)
	return nil
}

func (s *Store) emailInUseLocked(email, excludeID string) bool {
	for id, u := range s.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
