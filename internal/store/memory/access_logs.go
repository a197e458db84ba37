package memory

import (
	"context"
	"sort"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

func (s *Store) AppendAccessLog(_ context.Context, l models.AccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.CardID != nil {
		if _, ok := s.cards[*l.CardID]; !ok {
			return store.ErrNotFound
		}
	}
	s.logs = append(s.logs, l)
	return nil
}

func (s *Store) GetAccessLog(_ context.Context, id string) (models.AccessLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return models.AccessLog{}, store.ErrNotFound
}

// ListAccessLogs returns newest first.
func (s *Store) ListAccessLogs(_ context.Context, filter store.AccessLogFilter) ([]models.AccessLog, error) {
	s.mu.RLock()
	out := []models.AccessLog{}
	for _, l := range s.logs {
		if filter.CardID != "" && (l.CardID == nil || *l.CardID != filter.CardID) {
			continue
		}
		if filter.UserID != "" {
			if l.CardID == nil {
				continue
			}
			card, ok := s.cards[*l.CardID]
			if !ok || card.UserID != filter.UserID {
				continue
			}
		}
		if filter.Location != "" && l.Location != filter.Location {
			continue
		}
		out = append(out, l)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AccessedAt.After(out[j].AccessedAt)
	})
	return paginate(out, filter.Page), nil
}

func (s *Store) SummarizeAccessLogs(_ context.Context) (store.AccessLogSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := store.AccessLogSummary{Total: len(s.logs)}
	locations := map[string]struct{}{}
	cards := map[string]struct{}{}
	for _, l := range s.logs {
		switch l.AccessType {
		case models.AccessEntry:
			summary.Entries++
		case models.AccessExit:
			summary.Exits++
		case models.AccessDenied:
			summary.Denied++
		}
		locations[l.Location] = struct{}{}
		if l.CardID != nil {
			cards[*l.CardID] = struct{}{}
		}
	}
	summary.UniqueLocations = len(locations)
	summary.UniqueCards = len(cards)
	return summary, nil
}
