package memory

import (
	"context"
	"sort"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

func (s *Store) CreateRoom(_ context.Context, r models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; ok {
		return store.ErrConflict
	}
	s.rooms[r.ID] = r
	return nil
}

func (s *Store) GetRoom(_ context.Context, id string) (models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return models.Room{}, store.ErrNotFound
	}
	return r, nil
}

// LockRoom relies on WithTx holding txMu for the whole transaction.
func (s *Store) LockRoom(ctx context.Context, id string) (models.Room, error) {
	return s.GetRoom(ctx, id)
}

func (s *Store) ListRooms(_ context.Context, filter store.RoomFilter) ([]models.Room, error) {
	s.mu.RLock()
	out := []models.Room{}
	for _, r := range s.rooms {
		if filter.Location != "" && r.Location != filter.Location {
			continue
		}
		if r.Capacity < filter.MinCapacity {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) UpdateRoom(_ context.Context, r models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.rooms[r.ID] = r
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rooms, id)
	for key, res := range s.reservations {
		if res.RoomID == id {
			delete(s.reservations, key)
		}
	}
	return nil
}
