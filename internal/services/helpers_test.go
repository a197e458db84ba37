package services_test

import (
	"context"
	"testing"
	"time"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store/memory"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type fixture struct {
	store *memory.Store
	clock *clock.FakeClock
	users services.UserService
	rooms services.RoomService
	cards services.CardService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memory.New()
	clk := clock.Fake(at(8, 0))
	return fixture{
		store: st,
		clock: clk,
		users: services.UserService{Store: st, Clock: clk, Tokens: testTokens(clk)},
		rooms: services.RoomService{Store: st, Clock: clk},
		cards: services.CardService{Store: st, Clock: clk},
	}
}

func testTokens(c clock.Clock) services.TokenService {
	return services.TokenService{
		Secret:    []byte("test-secret"),
		Issuer:    "campus-test",
		AccessTTL: time.Hour,
		Clock:     c,
	}
}

func (f fixture) user(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), services.NewUser{Email: email, Password: "password123", Role: role})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (f fixture) room(t *testing.T, name string, capacity int) models.Room {
	t.Helper()
	r, err := f.rooms.Create(context.Background(), services.NewRoom{Name: name, Location: "Building A", Capacity: capacity})
	if err != nil {
		t.Fatalf("create room %s: %v", name, err)
	}
	return r
}

func (f fixture) card(t *testing.T, owner models.User, number string, status models.CardStatus) models.AccessCard {
	t.Helper()
	c, err := f.cards.Create(context.Background(), services.NewCard{UserID: owner.ID, CardNumber: number, Status: status})
	if err != nil {
		t.Fatalf("create card %s: %v", number, err)
	}
	return c
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !services.IsCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
