package memory

import (
	"context"
	"sort"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

func (s *Store) CreateReservation(_ context.Context, r models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; ok {
		return store.ErrConflict
	}
	if s.overlapsLocked(r) {
		return store.ErrConflict
	}
	s.reservations[r.ID] = r
	return nil
}

func (s *Store) GetReservation(_ context.Context, id string) (models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return models.Reservation{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReservations(_ context.Context, filter store.ReservationFilter) ([]models.Reservation, error) {
	s.mu.RLock()
	out := []models.Reservation{}
	for _, r := range s.reservations {
		if matchReservation(r, filter) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) CountReservations(_ context.Context, filter store.ReservationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.reservations {
		if matchReservation(r, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) SumExpectedOccupants(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, r := range s.reservations {
		total += r.ExpectedOccupants
	}
	return total, nil
}

func (s *Store) UpdateReservation(_ context.Context, r models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; !ok {
		return store.ErrNotFound
	}
	if s.overlapsLocked(r) {
		return store.ErrConflict
	}
	s.reservations[r.ID] = r
	return nil
}

func (s *Store) DeleteReservation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// overlapsLocked mirrors the exclusion constraint of the SQL schema.
func (s *Store) overlapsLocked(candidate models.Reservation) bool {
	for id, r := range s.reservations {
		if id == candidate.ID || r.RoomID != candidate.RoomID {
			continue
		}
		if r.Overlaps(candidate.StartTime, candidate.EndTime) {
			return true
		}
	}
	return false
}

func matchReservation(r models.Reservation, f store.ReservationFilter) bool {
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.UserID != "" && r.ReservedBy != f.UserID {
		return false
	}
	if f.ExcludeID != "" && r.ID == f.ExcludeID {
		return false
	}
	if f.Overlapping != nil && !r.Overlaps(f.Overlapping.Start, f.Overlapping.End) {
		return false
	}
	if f.StartsAfter != nil && !r.StartTime.After(*f.StartsAfter) {
		return false
	}
	if f.EndsBefore != nil && !r.EndTime.Before(*f.EndsBefore) {
		return false
	}
	if f.ActiveAt != nil && (r.StartTime.After(*f.ActiveAt) || r.EndTime.Before(*f.ActiveAt)) {
		return false
	}
	return true
}
