package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/db"
	"campus-access-backend/internal/migrations"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
	"campus-access-backend/internal/store/postgres"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// openTestStore needs TEST_DATABASE_URL pointing at a disposable database.
func openTestStore(t *testing.T) (*postgres.Store, *sqlx.DB) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	database, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := migrations.Apply(ctx, database, "../../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.ExecContext(ctx, `TRUNCATE access_logs, access_cards, room_reservations, rooms, professors, students, user_roles, users CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return postgres.New(database), database
}

func seed(t *testing.T, st *postgres.Store) (models.User, models.Room) {
	t.Helper()
	ctx := context.Background()
	user := models.User{ID: uuid.NewString(), Email: "pg@campus.test", PasswordHash: "x", Role: models.RoleProfessor, CreatedAt: base, UpdatedAt: base}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	room := models.Room{ID: uuid.NewString(), Name: "PG-1", Location: "Building P", Capacity: 30, CreatedAt: base, UpdatedAt: base}
	if err := st.CreateRoom(ctx, room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return user, room
}

func TestExclusionConstraintRejectsOverlap(t *testing.T) {
	st, _ := openTestStore(t)
	user, room := seed(t, st)
	ctx := context.Background()

	insert := func(start, end time.Time) error {
		return st.CreateReservation(ctx, models.Reservation{
			ID: uuid.NewString(), RoomID: room.ID, ReservedBy: user.ID,
			StartTime: start, EndTime: end, ExpectedOccupants: 5,
			CreatedAt: base, UpdatedAt: base,
		})
	}
	if err := insert(base, base.Add(time.Hour)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := insert(base.Add(30*time.Minute), base.Add(90*time.Minute)); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := insert(base.Add(time.Hour), base.Add(2*time.Hour)); err != nil {
		t.Fatalf("touching insert: %v", err)
	}
}

func TestConcurrentAdmissionsAdmitOne(t *testing.T) {
	st, _ := openTestStore(t)
	user, room := seed(t, st)
	svc := services.ReservationService{Store: st, Clock: clock.Fake(base.Add(-time.Hour))}

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offset := time.Duration(i) * time.Minute
			_, err := svc.Admit(context.Background(), services.ReservationRequest{
				RoomID: room.ID, ReservedBy: user.ID,
				StartTime: base.Add(offset), EndTime: base.Add(time.Hour + offset),
				ExpectedOccupants: 10,
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			} else if !services.IsCode(err, "conflict") {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if admitted != 1 {
		t.Fatalf("expected exactly one admission, got %d", admitted)
	}
}

func TestLookupsMapErrors(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	if _, err := st.GetRoom(ctx, "not-a-uuid"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := st.GetRoom(ctx, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
	user, _ := seed(t, st)
	dup := user
	dup.ID = uuid.NewString()
	if err := st.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestAccessLogSummaryAndCardDelete(t *testing.T) {
	st, _ := openTestStore(t)
	user, _ := seed(t, st)
	ctx := context.Background()

	card := models.AccessCard{ID: uuid.NewString(), UserID: user.ID, CardNumber: "PG-CARD", Status: models.CardActive, IssuedAt: base}
	if err := st.CreateCard(ctx, card); err != nil {
		t.Fatalf("create card: %v", err)
	}
	for i, kind := range []models.AccessType{models.AccessEntry, models.AccessExit, models.AccessDenied} {
		id := card.ID
		entry := models.AccessLog{
			ID: uuid.NewString(), CardID: &id, AccessedAt: base.Add(time.Duration(i) * time.Minute),
			Location: "Library", AccessType: kind, Granted: kind.Granted(),
		}
		if err := st.AppendAccessLog(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	summary, err := st.SummarizeAccessLogs(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 3 || summary.Entries != 1 || summary.Denied != 1 || summary.UniqueCards != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if err := st.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	logs, err := st.ListAccessLogs(ctx, store.AccessLogFilter{Location: "Library"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs to survive, got %d", len(logs))
	}
	for _, l := range logs {
		if l.CardID != nil {
			t.Fatalf("expected card id cleared, got %s", *l.CardID)
		}
	}
}
