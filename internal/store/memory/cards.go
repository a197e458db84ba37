package memory

import (
	"context"
	"sort"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

func (s *Store) CreateCard(_ context.Context, c models.AccessCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; ok {
		return store.ErrConflict
	}
	if s.cardNumberInUseLocked(c.CardNumber, "") {
		return store.ErrConflict
	}
	s.cards[c.ID] = c
	return nil
}

func (s *Store) GetCard(_ context.Context, id string) (models.AccessCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return models.AccessCard{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCardByNumber(_ context.Context, number string) (models.AccessCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cards {
		if c.CardNumber == number {
			return c, nil
		}
	}
	return models.AccessCard{}, store.ErrNotFound
}

func (s *Store) ListCards(_ context.Context, filter store.CardFilter) ([]models.AccessCard, error) {
	s.mu.RLock()
	out := []models.AccessCard{}
	for _, c := range s.cards {
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].IssuedAt.Before(out[j].IssuedAt)
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) UpdateCard(_ context.Context, c models.AccessCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; !ok {
		return store.ErrNotFound
	}
	if s.cardNumberInUseLocked(c.CardNumber, c.ID) {
		return store.ErrConflict
	}
	s.cards[c.ID] = c
	return nil
}

func (s *Store) DeleteCard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteCardLocked(id)
	return nil
}

func (s *Store) deleteCardLocked(id string) {
	delete(s.cards, id)
	for i := range s.logs {
		if s.logs[i].CardID != nil && *s.logs[i].CardID == id {
			s.logs[i].CardID = nil
		}
	}
}

func (s *Store) cardNumberInUseLocked(number, excludeID string) bool {
	for id, c := range s.cards {
		if id != excludeID && c.CardNumber == number {
			return true
		}
	}
	return false
}
