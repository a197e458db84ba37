package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const (
	msgRoomNotFound        = "Room not found"
	msgUserNotFound        = "User not found"
	msgReservationNotFound = "Reservation not found"
	msgInvalidRange        = "Start time must be before end time"
	msgTimeConflict        = "Time conflict: Room is already reserved for this time period"
)

type ReservationRequest struct {
	RoomID            string
	ReservedBy        string
	StartTime         time.Time
	EndTime           time.Time
	ExpectedOccupants int
}

// ReservationPatch leaves nil fields unchanged.
type ReservationPatch struct {
	StartTime         *time.Time
	EndTime           *time.Time
	ExpectedOccupants *int
}

type Availability struct {
	RoomID      string
	RoomName    string
	StartTime   time.Time
	EndTime     time.Time
	IsAvailable bool
	Conflicts   []models.Reservation
}

type ReservationStats struct {
	Total                  int `json:"total_reservations"`
	Upcoming               int `json:"active_reservations"`
	Past                   int `json:"past_reservations"`
	Current                int `json:"current_reservations"`
	TotalExpectedOccupants int `json:"total_expected_occupants"`
}

// ReservationService admits reservations so that no two reservations of a
// room share any instant and none exceeds the room's capacity.
type ReservationService struct {
	Store   store.Store
	Clock   clock.Clock
	Metrics *Instruments
}

func (s ReservationService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

// Admit validates req against the room and its existing bookings and stores
// it. Checks run in order: room, user, range, occupants, capacity, overlap.
func (s ReservationService) Admit(ctx context.Context, req ReservationRequest) (models.Reservation, error) {
	start, end := normalizeTime(req.StartTime), normalizeTime(req.EndTime)
	var created models.Reservation
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		room, err := tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return storeErr(err, msgRoomNotFound, "", "lock room")
		}
		if _, err := tx.GetUser(ctx, req.ReservedBy); err != nil {
			return storeErr(err, msgUserNotFound, "", "load user")
		}
		if err := validateRange(start, end); err != nil {
			return err
		}
		if err := checkOccupants(req.ExpectedOccupants, room.Capacity); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, tx, room.ID, "", start, end); err != nil {
			return err
		}
		now := s.now()
		candidate := models.Reservation{
			ID:                uuid.NewString(),
			RoomID:            room.ID,
			ReservedBy:        req.ReservedBy,
			StartTime:         start,
			EndTime:           end,
			ExpectedOccupants: req.ExpectedOccupants,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.CreateReservation(ctx, candidate); err != nil {
			return storeErr(err, msgRoomNotFound, msgTimeConflict, "create reservation")
		}
		created = candidate
		return nil
	})
	s.Metrics.admission(err)
	if err != nil {
		return models.Reservation{}, err
	}
	return created, nil
}

// Update applies patch. Capacity is checked again only when the occupant
// count is supplied; the overlap check runs only when a time is supplied and
// ignores the reservation's own row.
func (s ReservationService) Update(ctx context.Context, id string, patch ReservationPatch) (models.Reservation, error) {
	var updated models.Reservation
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.GetReservation(ctx, id)
		if err != nil {
			return storeErr(err, msgReservationNotFound, "", "load reservation")
		}
		room, err := tx.LockRoom(ctx, current.RoomID)
		if err != nil {
			return storeErr(err, msgRoomNotFound, "", "lock room")
		}
		next := current
		if patch.StartTime != nil {
			next.StartTime = normalizeTime(*patch.StartTime)
		}
		if patch.EndTime != nil {
			next.EndTime = normalizeTime(*patch.EndTime)
		}
		if patch.ExpectedOccupants != nil {
			next.ExpectedOccupants = *patch.ExpectedOccupants
		}
		if err := validateRange(next.StartTime, next.EndTime); err != nil {
			return err
		}
		if patch.ExpectedOccupants != nil {
			if err := checkOccupants(next.ExpectedOccupants, room.Capacity); err != nil {
				return err
			}
		}
		if patch.StartTime != nil || patch.EndTime != nil {
			if err := ensureNoOverlap(ctx, tx, room.ID, current.ID, next.StartTime, next.EndTime); err != nil {
				return err
			}
		}
		next.UpdatedAt = s.now()
		if err := tx.UpdateReservation(ctx, next); err != nil {
			return storeErr(err, msgReservationNotFound, msgTimeConflict, "update reservation")
		}
		updated = next
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}
	return updated, nil
}

// Availability reports the reservations that intersect [start, end) in a room.
func (s ReservationService) Availability(ctx context.Context, roomID string, start, end time.Time) (Availability, error) {
	start, end = normalizeTime(start), normalizeTime(end)
	if err := validateRange(start, end); err != nil {
		return Availability{}, err
	}
	room, err := s.Store.GetRoom(ctx, roomID)
	if err != nil {
		return Availability{}, storeErr(err, msgRoomNotFound, "", "load room")
	}
	conflicts, err := s.Store.ListReservations(ctx, store.ReservationFilter{
		RoomID:      room.ID,
		Overlapping: &store.Window{Start: start, End: end},
	})
	if err != nil {
		return Availability{}, WrapError(err, "list conflicts")
	}
	return Availability{
		RoomID:      room.ID,
		RoomName:    room.Name,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: len(conflicts) == 0,
		Conflicts:   conflicts,
	}, nil
}

func (s ReservationService) Get(ctx context.Context, id string) (models.Reservation, error) {
	r, err := s.Store.GetReservation(ctx, id)
	return r, storeErr(err, msgReservationNotFound, "", "load reservation")
}

// List filters by room or user; naming an unknown room or user is NotFound.
func (s ReservationService) List(ctx context.Context, filter store.ReservationFilter) ([]models.Reservation, error) {
	if filter.RoomID != "" {
		if _, err := s.Store.GetRoom(ctx, filter.RoomID); err != nil {
			return nil, storeErr(err, msgRoomNotFound, "", "load room")
		}
	}
	if filter.UserID != "" {
		if _, err := s.Store.GetUser(ctx, filter.UserID); err != nil {
			return nil, storeErr(err, msgUserNotFound, "", "load user")
		}
	}
	items, err := s.Store.ListReservations(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list reservations")
	}
	return items, nil
}

func (s ReservationService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteReservation(ctx, id), msgReservationNotFound, "", "delete reservation")
}

// Stats counts reservations relative to now. The counters are independent
// queries and run concurrently.
func (s ReservationService) Stats(ctx context.Context) (ReservationStats, error) {
	now := s.now()
	var stats ReservationStats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, filter store.ReservationFilter) {
		g.Go(func() error {
			n, err := s.Store.CountReservations(gctx, filter)
			*dst = n
			return err
		})
	}
	count(&stats.Total, store.ReservationFilter{})
	count(&stats.Upcoming, store.ReservationFilter{StartsAfter: &now})
	count(&stats.Past, store.ReservationFilter{EndsBefore: &now})
	count(&stats.Current, store.ReservationFilter{ActiveAt: &now})
	g.Go(func() error {
		total, err := s.Store.SumExpectedOccupants(gctx)
		stats.TotalExpectedOccupants = total
		return err
	})
	if err := g.Wait(); err != nil {
		return ReservationStats{}, WrapError(err, "reservation stats")
	}
	return stats, nil
}

func ensureNoOverlap(ctx context.Context, tx store.Store, roomID, excludeID string, start, end time.Time) error {
	conflicts, err := tx.ListReservations(ctx, store.ReservationFilter{
		RoomID:      roomID,
		ExcludeID:   excludeID,
		Overlapping: &store.Window{Start: start, End: end},
		Page:        store.Page{Limit: 1},
	})
	if err != nil {
		return WrapError(err, "check overlap")
	}
	if len(conflicts) > 0 {
		return ErrConflict(msgTimeConflict)
	}
	return nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidInput(msgInvalidRange)
	}
	return nil
}

func checkOccupants(occupants, capacity int) error {
	if occupants <= 0 {
		return ErrInvalidInput("Expected occupants must be greater than zero")
	}
	if occupants > capacity {
		return ErrInvalidInput(fmt.Sprintf("Expected occupants (%d) exceed room capacity (%d)", occupants, capacity))
	}
	return nil
}

// normalizeTime matches the microsecond precision of timestamptz.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
