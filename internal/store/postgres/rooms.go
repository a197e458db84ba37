package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const roomColumns = `id, name, location, capacity, created_at, updated_at`

func (s *Store) CreateRoom(ctx context.Context, r models.Room) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO rooms (`+roomColumns+`)
VALUES ($1, $2, $3, $4, $5, $6)
`, r.ID, r.Name, r.Location, r.Capacity, r.CreatedAt, r.UpdatedAt)
	return translate(err)
}

func (s *Store) GetRoom(ctx context.Context, id string) (models.Room, error) {
	var r models.Room
	err := s.get(ctx, &r, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	return r, err
}

// LockRoom takes a row lock that serializes admissions for one room.
func (s *Store) LockRoom(ctx context.Context, id string) (models.Room, error) {
	var r models.Room
	err := s.get(ctx, &r, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
	return r, err
}

func (s *Store) ListRooms(ctx context.Context, filter store.RoomFilter) ([]models.Room, error) {
	var c conditions
	if filter.Location != "" {
		c.add("location = ?", filter.Location)
	}
	if filter.MinCapacity > 0 {
		c.add("capacity >= ?", filter.MinCapacity)
	}
	query := `SELECT ` + roomColumns + ` FROM rooms` + c.where() + ` ORDER BY name, id`
	query += c.page(filter.Page)
	out := []models.Room{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) UpdateRoom(ctx context.Context, r models.Room) error {
	return s.exec(ctx, `
UPDATE rooms SET name = $2, location = $3, capacity = $4, updated_at = $5
WHERE id = $1
`, r.ID, r.Name, r.Location, r.Capacity, r.UpdatedAt)
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
}
