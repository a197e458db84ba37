package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const cardColumns = `id, user_id, card_number, status, issued_at`

func (s *Store) CreateCard(ctx context.Context, c models.AccessCard) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO access_cards (`+cardColumns+`)
VALUES ($1, $2, $3, $4, $5)
`, c.ID, c.UserID, c.CardNumber, string(c.Status), c.IssuedAt)
	return translate(err)
}

func (s *Store) GetCard(ctx context.Context, id string) (models.AccessCard, error) {
	var c models.AccessCard
	err := s.get(ctx, &c, `SELECT `+cardColumns+` FROM access_cards WHERE id = $1`, id)
	return c, err
}

func (s *Store) GetCardByNumber(ctx context.Context, number string) (models.AccessCard, error) {
	var c models.AccessCard
	err := s.get(ctx, &c, `SELECT `+cardColumns+` FROM access_cards WHERE card_number = $1`, number)
	return c, err
}

func (s *Store) ListCards(ctx context.Context, filter store.CardFilter) ([]models.AccessCard, error) {
	var c conditions
	if filter.UserID != "" {
		c.add("user_id = ?", filter.UserID)
	}
	query := `SELECT ` + cardColumns + ` FROM access_cards` + c.where() + ` ORDER BY issued_at, id`
	query += c.page(filter.Page)
	out := []models.AccessCard{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) UpdateCard(ctx context.Context, c models.AccessCard) error {
	return s.exec(ctx, `
UPDATE access_cards SET card_number = $2, status = $3 WHERE id = $1
`, c.ID, c.CardNumber, string(c.Status))
}

// DeleteCard leaves logs behind through ON DELETE SET NULL.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM access_cards WHERE id = $1`, id)
}
