package store

import (
	"context"
	"errors"
	"time"

	"campus-access-backend/internal/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrConflict covers unique-key and reservation exclusion violations.
	ErrConflict = errors.New("store: conflict")
)

// Page bounds a list query. Limit <= 0 means unbounded.
type Page struct {
	Offset int
	Limit  int
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	// DeleteUser removes the user with its profiles, cards and reservations.
	DeleteUser(ctx context.Context, id string) error
	ListUserRoles(ctx context.Context, userID string) ([]models.Role, error)
	AddUserRole(ctx context.Context, userID string, role models.Role) error
	RemoveUserRole(ctx context.Context, userID string, role models.Role) error
}

type StudentFilter struct {
	ClassName string
	Page
}

type StudentStore interface {
	CreateStudent(ctx context.Context, s models.Student) error
	GetStudent(ctx context.Context, id string) (models.Student, error)
	GetStudentByUser(ctx context.Context, userID string) (models.Student, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	UpdateStudent(ctx context.Context, s models.Student) error
	DeleteStudent(ctx context.Context, id string) error
	// StudentEmailTaken ignores the row with id excludeID.
	StudentEmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	StudentCardIDTaken(ctx context.Context, cardID, excludeID string) (bool, error)
}

type ProfessorFilter struct {
	Department string
	Page
}

type ProfessorStore interface {
	CreateProfessor(ctx context.Context, p models.Professor) error
	GetProfessor(ctx context.Context, id string) (models.Professor, error)
	GetProfessorByUser(ctx context.Context, userID string) (models.Professor, error)
	ListProfessors(ctx context.Context, filter ProfessorFilter) ([]models.Professor, error)
	UpdateProfessor(ctx context.Context, p models.Professor) error
	DeleteProfessor(ctx context.Context, id string) error
	ProfessorEmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}

type RoomFilter struct {
	Location    string
	MinCapacity int
	Page
}

type RoomStore interface {
	CreateRoom(ctx context.Context, r models.Room) error
	GetRoom(ctx context.Context, id string) (models.Room, error)
	// LockRoom reads the room and, inside WithTx, holds it until commit.
	LockRoom(ctx context.Context, id string) (models.Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	UpdateRoom(ctx context.Context, r models.Room) error
	// DeleteRoom also removes the room's reservations.
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationFilter fields are ANDed; zero values are ignored.
type ReservationFilter struct {
	RoomID      string
	UserID      string
	Overlapping *Window
	ExcludeID   string
	StartsAfter *time.Time
	EndsBefore  *time.Time
	ActiveAt    *time.Time
	Page
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r models.Reservation) error
	GetReservation(ctx context.Context, id string) (models.Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	CountReservations(ctx context.Context, filter ReservationFilter) (int, error)
	SumExpectedOccupants(ctx context.Context) (int, error)
	UpdateReservation(ctx context.Context, r models.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

type CardFilter struct {
	UserID string
	Page
}

type CardStore interface {
	CreateCard(ctx context.Context, c models.AccessCard) error
	GetCard(ctx context.Context, id string) (models.AccessCard, error)
	GetCardByNumber(ctx context.Context, number string) (models.AccessCard, error)
	ListCards(ctx context.Context, filter CardFilter) ([]models.AccessCard, error)
	UpdateCard(ctx context.Context, c models.AccessCard) error
	// DeleteCard keeps the card's logs with a nil card id.
	DeleteCard(ctx context.Context, id string) error
}

type AccessLogFilter struct {
	CardID   string
	UserID   string
	Location string
	Page
}

type AccessLogSummary struct {
	Total           int `db:"total"`
	Entries         int `db:"entries"`
	Exits           int `db:"exits"`
	Denied          int `db:"denied"`
	UniqueLocations int `db:"unique_locations"`
	UniqueCards     int `db:"unique_cards"`
}

// AccessLogStore is append-only.
type AccessLogStore interface {
	AppendAccessLog(ctx context.Context, l models.AccessLog) error
	GetAccessLog(ctx context.Context, id string) (models.AccessLog, error)
	ListAccessLogs(ctx context.Context, filter AccessLogFilter) ([]models.AccessLog, error)
	SummarizeAccessLogs(ctx context.Context) (AccessLogSummary, error)
}

type Store interface {
	UserStore
	StudentStore
	ProfessorStore
	RoomStore
	ReservationStore
	CardStore
	AccessLogStore

	// WithTx runs fn against a transactional view of the store. Calls nested
	// inside fn reuse the same transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
