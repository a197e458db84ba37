package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const reservationColumns = `id, room_id, reserved_by, start_time, end_time, expected_occupants, created_at, updated_at`

func (s *Store) CreateReservation(ctx context.Context, r models.Reservation) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO room_reservations (`+reservationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, r.ID, r.RoomID, r.ReservedBy, r.StartTime, r.EndTime, r.ExpectedOccupants, r.CreatedAt, r.UpdatedAt)
	return translate(err)
}

func (s *Store) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	var r models.Reservation
	err := s.get(ctx, &r, `SELECT `+reservationColumns+` FROM room_reservations WHERE id = $1`, id)
	return r, err
}

func (s *Store) ListReservations(ctx context.Context, filter store.ReservationFilter) ([]models.Reservation, error) {
	c := reservationConditions(filter)
	query := `SELECT ` + reservationColumns + ` FROM room_reservations` + c.where() + ` ORDER BY start_time, id`
	query += c.page(filter.Page)
	out := []models.Reservation{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) CountReservations(ctx context.Context, filter store.ReservationFilter) (int, error) {
	c := reservationConditions(filter)
	var count int
	err := s.get(ctx, &count, `SELECT COUNT(*) FROM room_reservations`+c.where(), c.args...)
	return count, err
}

func (s *Store) SumExpectedOccupants(ctx context.Context) (int, error) {
	var total int
	err := s.get(ctx, &total, `SELECT COALESCE(SUM(expected_occupants), 0) FROM room_reservations`)
	return total, err
}

func (s *Store) UpdateReservation(ctx context.Context, r models.Reservation) error {
	return s.exec(ctx, `
UPDATE room_reservations
SET start_time = $2, end_time = $3, expected_occupants = $4, updated_at = $5
WHERE id = $1
`, r.ID, r.StartTime, r.EndTime, r.ExpectedOccupants, r.UpdatedAt)
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM room_reservations WHERE id = $1`, id)
}

func reservationConditions(f store.ReservationFilter) *conditions {
	c := &conditions{}
	if f.RoomID != "" {
		c.add("room_id = ?", f.RoomID)
	}
	if f.UserID != "" {
		c.add("reserved_by = ?", f.UserID)
	}
	if f.ExcludeID != "" {
		c.add("id <> ?", f.ExcludeID)
	}
	if f.Overlapping != nil {
		c.add("start_time < ?", f.Overlapping.End)
		c.add("end_time > ?", f.Overlapping.Start)
	}
	if f.StartsAfter != nil {
		c.add("start_time > ?", *f.StartsAfter)
	}
	if f.EndsBefore != nil {
		c.add("end_time < ?", *f.EndsBefore)
	}
	if f.ActiveAt != nil {
		c.add("start_time <= ?", *f.ActiveAt)
		c.add("end_time >= ?", *f.ActiveAt)
	}
	return c
}
