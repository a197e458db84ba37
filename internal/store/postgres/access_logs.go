package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const accessLogColumns = `l.id, l.card_id, l.accessed_at, l.location, l.access_type, l.granted`

func (s *Store) AppendAccessLog(ctx context.Context, l models.AccessLog) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO access_logs (id, card_id, accessed_at, location, access_type, granted)
VALUES ($1, $2, $3, $4, $5, $6)
`, l.ID, l.CardID, l.AccessedAt, l.Location, string(l.AccessType), l.Granted)
	return translate(err)
}

func (s *Store) GetAccessLog(ctx context.Context, id string) (models.AccessLog, error) {
	var l models.AccessLog
	err := s.get(ctx, &l, `SELECT `+accessLogColumns+` FROM access_logs l WHERE l.id = $1`, id)
	return l, err
}

func (s *Store) ListAccessLogs(ctx context.Context, filter store.AccessLogFilter) ([]models.AccessLog, error) {
	var c conditions
	from := ` FROM access_logs l`
	if filter.UserID != "" {
		from += ` JOIN access_cards c ON c.id = l.card_id`
		c.add("c.user_id = ?", filter.UserID)
	}
	if filter.CardID != "" {
		c.add("l.card_id = ?", filter.CardID)
	}
	if filter.Location != "" {
		c.add("l.location = ?", filter.Location)
	}
	query := `SELECT ` + accessLogColumns + from + c.where() + ` ORDER BY l.accessed_at DESC, l.id`
	query += c.page(filter.Page)
	out := []models.AccessLog{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) SummarizeAccessLogs(ctx context.Context) (store.AccessLogSummary, error) {
	var summary store.AccessLogSummary
	err := s.get(ctx, &summary, `
SELECT
  COUNT(*) AS total,
  COUNT(*) FILTER (WHERE access_type = 'entry') AS entries,
  COUNT(*) FILTER (WHERE access_type = 'exit') AS exits,
  COUNT(*) FILTER (WHERE access_type = 'denied') AS denied,
  COUNT(DISTINCT location) AS unique_locations,
  COUNT(DISTINCT card_id) AS unique_cards
FROM access_logs
`)
	return summary, err
}
