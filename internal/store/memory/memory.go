package memory

import (
	"context"
	"sync"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

// Store keeps every entity in process memory. It is intended for tests and
// the --memory dev mode. WithTx serializes transactions but does not roll back
// writes made before fn returns an error.
type Store struct {
	*state
	inTx bool
}

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users        map[string]models.User
	userRoles    map[string]map[models.Role]bool
	students     map[string]models.Student
	professors   map[string]models.Professor
	rooms        map[string]models.Room
	reservations map[string]models.Reservation
	cards        map[string]models.AccessCard
	logs         []models.AccessLog
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: &state{
		users:        make(map[string]models.User),
		userRoles:    make(map[string]map[models.Role]bool),
		students:     make(map[string]models.Student),
		professors:   make(map[string]models.Professor),
		rooms:        make(map[string]models.Room),
		reservations: make(map[string]models.Reservation),
		cards:        make(map[string]models.AccessCard),
	}}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&Store{state: s.state, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Offset > 0 {
		if page.Offset >= len(items) {
			return []T{}
		}
		items = items[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
