package services_test

import (
	"context"
	"testing"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
	"campus-access-backend/internal/store"
)

// ── Users ──

func TestUserCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "taken@campus.test", models.RoleStudent)

	_, err := f.users.Create(ctx, services.NewUser{Email: "TAKEN@campus.test", Password: "password123", Role: models.RoleStudent})
	expectCode(t, err, "conflict")
	_, err = f.users.Create(ctx, services.NewUser{Email: "short@campus.test", Password: "1234567", Role: models.RoleStudent})
	expectCode(t, err, "invalid_input")
	_, err = f.users.Create(ctx, services.NewUser{Email: "role@campus.test", Password: "password123", Role: "janitor"})
	expectCode(t, err, "invalid_input")
}

func TestUserUpdateAndRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@campus.test", models.RoleStudent)
	f.user(t, "b@campus.test", models.RoleStudent)

	taken := "b@campus.test"
	_, err := f.users.Update(ctx, a.ID, services.UserPatch{Email: &taken})
	expectCode(t, err, "conflict")

	password := "new-password"
	if _, err := f.users.Update(ctx, a.ID, services.UserPatch{Password: &password}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	auth := services.AuthService{Store: f.store, Tokens: testTokens(f.clock)}
	if _, err := auth.Authenticate(ctx, "a@campus.test", "new-password"); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}

	if err := f.users.AddRole(ctx, a.ID, models.RoleProfessor); err != nil {
		t.Fatalf("add role: %v", err)
	}
	ok, err := f.users.HasRole(ctx, a.ID, models.RoleProfessor)
	if err != nil || !ok {
		t.Fatalf("expected extra role, ok=%v err=%v", ok, err)
	}
	roles, err := f.users.Roles(ctx, a.ID)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) != 2 || roles[0] != models.RoleStudent {
		t.Fatalf("expected primary role first, got %v", roles)
	}
	if err := f.users.RemoveRole(ctx, a.ID, models.RoleProfessor); err != nil {
		t.Fatalf("remove role: %v", err)
	}
	expectCode(t, f.users.RemoveRole(ctx, a.ID, models.RoleProfessor), "not_found")
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := f.users.EnsureAdmin(ctx, "root@campus.test", "password123"); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
	}
	users, err := f.users.List(ctx, store.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Role != models.RoleAdmin {
		t.Fatalf("expected a single admin, got %+v", users)
	}
}

// ── Students & professors ──

func TestStudentUniquenessAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.StudentService{Store: f.store, Clock: f.clock}
	u1 := f.user(t, "s1@campus.test", models.RoleStudent)
	u2 := f.user(t, "s2@campus.test", models.RoleStudent)
	u3 := f.user(t, "s3@campus.test", models.RoleStudent)
	phone := "+33 1 23 45 67 89"

	first, err := svc.Create(ctx, services.NewStudent{UserID: u1.ID, FullName: "Ada", StudentCardID: "S-1", Email: "ada@campus.test", ClassName: "CS1", PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.Create(ctx, services.NewStudent{UserID: u1.ID, FullName: "Ada", StudentCardID: "S-9", Email: "other@campus.test", ClassName: "CS1"})
	expectCode(t, err, "conflict")
	_, err = svc.Create(ctx, services.NewStudent{UserID: u2.ID, FullName: "Bob", StudentCardID: "S-1", Email: "bob@campus.test", ClassName: "CS1"})
	expectCode(t, err, "conflict")
	_, err = svc.Create(ctx, services.NewStudent{UserID: u2.ID, FullName: "Bob", StudentCardID: "S-2", Email: "ADA@campus.test", ClassName: "CS1"})
	expectCode(t, err, "conflict")
	_, err = svc.Create(ctx, services.NewStudent{UserID: "missing", FullName: "X", StudentCardID: "S-3", Email: "x@campus.test", ClassName: "CS1"})
	expectCode(t, err, "not_found")

	if _, err := svc.Create(ctx, services.NewStudent{UserID: u2.ID, FullName: "Bob", StudentCardID: "S-2", Email: "bob@campus.test", ClassName: "CS2"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if _, err := svc.Create(ctx, services.NewStudent{UserID: u3.ID, FullName: "Cy", StudentCardID: "S-3", Email: "cy@campus.test", ClassName: "CS1"}); err != nil {
		t.Fatalf("create cy: %v", err)
	}

	sameEmail := "ada@campus.test"
	if _, err := svc.Update(ctx, first.ID, services.StudentPatch{Email: &sameEmail}); err != nil {
		t.Fatalf("updating to own email should pass: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.UniqueClasses != 2 || stats.WithPhone != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.ClassDistribution[0] != (services.ClassCount{ClassName: "CS1", Count: 2}) {
		t.Fatalf("expected CS1 first, got %+v", stats.ClassDistribution)
	}

	byClass, err := svc.List(ctx, store.StudentFilter{ClassName: "CS2"})
	if err != nil || len(byClass) != 1 || byClass[0].FullName != "Bob" {
		t.Fatalf("expected Bob in CS2, got %+v err=%v", byClass, err)
	}
	byUser, err := svc.GetByUser(ctx, u1.ID)
	if err != nil || byUser.ID != first.ID {
		t.Fatalf("expected profile for u1, got %+v err=%v", byUser, err)
	}
}

func TestProfessorStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.ProfessorService{Store: f.store, Clock: f.clock}
	physics, office := "Physics", "B-204"
	u1 := f.user(t, "p1@campus.test", models.RoleProfessor)
	u2 := f.user(t, "p2@campus.test", models.RoleProfessor)

	if _, err := svc.Create(ctx, services.NewProfessor{UserID: u1.ID, FullName: "Curie", Email: "curie@campus.test", Department: &physics, Office: &office}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, services.NewProfessor{UserID: u2.ID, FullName: "Bohr", Email: "CURIE@campus.test"})
	expectCode(t, err, "conflict")
	if _, err := svc.Create(ctx, services.NewProfessor{UserID: u2.ID, FullName: "Bohr", Email: "bohr@campus.test", Department: &physics}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.UniqueDepartments != 1 || stats.WithOffice != 1 || stats.WithPhone != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	list, err := svc.List(ctx, store.ProfessorFilter{Department: "Physics"})
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 physics professors, got %d err=%v", len(list), err)
	}
}

// ── Rooms & cards ──

func TestRoomValidationAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.rooms.Create(ctx, services.NewRoom{Name: "Broom", Location: "B", Capacity: 0})
	expectCode(t, err, "invalid_input")

	f.room(t, "Small", 10)
	medium := f.room(t, "Medium", 20)
	f.room(t, "Large", 50)

	zero := 0
	_, err = f.rooms.Update(ctx, medium.ID, services.RoomPatch{Capacity: &zero})
	expectCode(t, err, "invalid_input")

	_, err = f.rooms.List(ctx, store.RoomFilter{MinCapacity: -1})
	expectCode(t, err, "invalid_input")
	big, err := f.rooms.List(ctx, store.RoomFilter{MinCapacity: 20})
	if err != nil || len(big) != 2 {
		t.Fatalf("expected 2 rooms with capacity >= 20, got %d err=%v", len(big), err)
	}

	stats, err := f.rooms.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := services.RoomStats{
		Total:           3,
		TotalCapacity:   80,
		AverageCapacity: 26.67,
		UniqueLocations: 1,
		Distribution:    services.CapacityDistribution{Small: 1, Medium: 1, Large: 1},
	}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestCardLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "holder@campus.test", models.RoleStudent)

	card := f.card(t, owner, "C-1", "")
	if card.Status != models.CardActive {
		t.Fatalf("expected default status active, got %s", card.Status)
	}
	_, err := f.cards.Create(ctx, services.NewCard{UserID: owner.ID, CardNumber: "C-1"})
	expectCode(t, err, "conflict")
	_, err = f.cards.Create(ctx, services.NewCard{UserID: "missing", CardNumber: "C-2"})
	expectCode(t, err, "not_found")

	for _, status := range []string{"lost", "disabled", "active", "lost"} {
		updated, err := f.cards.SetStatus(ctx, card.ID, status)
		if err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
		if string(updated.Status) != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
	_, err = f.cards.SetStatus(ctx, card.ID, "stolen")
	expectCode(t, err, "invalid_input")

	cards, err := f.cards.List(ctx, store.CardFilter{UserID: owner.ID})
	if err != nil || len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d err=%v", len(cards), err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "holder@campus.test", models.RoleStudent)
	card := f.card(t, owner, "C-1", models.CardActive)

	if err := f.users.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.cards.Get(ctx, card.ID)
	expectCode(t, err, "not_found")
	expectCode(t, f.users.Delete(ctx, owner.ID), "not_found")
}
