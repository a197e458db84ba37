package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

type NewRoom struct {
	Name     string
	Location string
	Capacity int
}

type RoomPatch struct {
	Name     *string
	Location *string
	Capacity *int
}

type CapacityDistribution struct {
	Small  int `json:"small_rooms_less_than_20"`
	Medium int `json:"medium_rooms_20_to_50"`
	Large  int `json:"large_rooms_50_plus"`
}

type RoomStats struct {
	Total           int                  `json:"total_rooms"`
	TotalCapacity   int                  `json:"total_capacity"`
	AverageCapacity float64              `json:"average_capacity"`
	UniqueLocations int                  `json:"unique_locations"`
	Distribution    CapacityDistribution `json:"capacity_distribution"`
}

type RoomService struct {
	Store store.Store
	Clock clock.Clock
}

func (s RoomService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

func (s RoomService) Create(ctx context.Context, in NewRoom) (models.Room, error) {
	room := models.Room{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Location: strings.TrimSpace(in.Location),
		Capacity: in.Capacity,
	}
	if err := validateRoom(room); err != nil {
		return models.Room{}, err
	}
	room.CreatedAt = s.now()
	room.UpdatedAt = room.CreatedAt
	if err := s.Store.CreateRoom(ctx, room); err != nil {
		return models.Room{}, storeErr(err, "", "Room already exists", "create room")
	}
	return room, nil
}

func (s RoomService) Get(ctx context.Context, id string) (models.Room, error) {
	room, err := s.Store.GetRoom(ctx, id)
	return room, storeErr(err, msgRoomNotFound, "", "load room")
}

func (s RoomService) List(ctx context.Context, filter store.RoomFilter) ([]models.Room, error) {
	if filter.MinCapacity < 0 {
		return nil, ErrInvalidInput("Minimum capacity must be non-negative")
	}
	rooms, err := s.Store.ListRooms(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list rooms")
	}
	return rooms, nil
}

func (s RoomService) Update(ctx context.Context, id string, patch RoomPatch) (models.Room, error) {
	room, err := s.Store.GetRoom(ctx, id)
	if err != nil {
		return models.Room{}, storeErr(err, msgRoomNotFound, "", "load room")
	}
	if patch.Name != nil {
		room.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Location != nil {
		room.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if err := validateRoom(room); err != nil {
		return models.Room{}, err
	}
	room.UpdatedAt = s.now()
	if err := s.Store.UpdateRoom(ctx, room); err != nil {
		return models.Room{}, storeErr(err, msgRoomNotFound, "", "update room")
	}
	return room, nil
}

func (s RoomService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteRoom(ctx, id), msgRoomNotFound, "", "delete room")
}

func (s RoomService) Stats(ctx context.Context) (RoomStats, error) {
	rooms, err := s.Store.ListRooms(ctx, store.RoomFilter{})
	if err != nil {
		return RoomStats{}, WrapError(err, "room stats")
	}
	stats := RoomStats{Total: len(rooms)}
	locations := map[string]struct{}{}
	for _, room := range rooms {
		stats.TotalCapacity += room.Capacity
		locations[room.Location] = struct{}{}
		switch {
		case room.Capacity < 20:
			stats.Distribution.Small++
		case room.Capacity < 50:
			stats.Distribution.Medium++
		default:
			stats.Distribution.Large++
		}
	}
	stats.UniqueLocations = len(locations)
	if stats.Total > 0 {
		avg := float64(stats.TotalCapacity) / float64(stats.Total)
		stats.AverageCapacity = math.Round(avg*100) / 100
	}
	return stats, nil
}

func validateRoom(room models.Room) error {
	if room.Name == "" {
		return ErrInvalidInput("Room name is required")
	}
	if room.Location == "" {
		return ErrInvalidInput("Room location is required")
	}
	if room.Capacity <= 0 {
		return ErrInvalidInput("Room capacity must be greater than zero")
	}
	return nil
}
