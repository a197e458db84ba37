package models

import "time"

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type RoleRecord struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type Student struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	FullName      string    `db:"full_name"`
	StudentCardID string    `db:"student_card_id"`
	Email         string    `db:"email"`
	ClassName     string    `db:"class_name"`
	PhoneNumber   *string   `db:"phone_number"`
	RegisteredAt  time.Time `db:"registered_at"`
}

type Professor struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	FullName    string    `db:"full_name"`
	Email       string    `db:"email"`
	Department  *string   `db:"department"`
	PhoneNumber *string   `db:"phone_number"`
	Office      *string   `db:"office"`
	CreatedAt   time.Time `db:"created_at"`
}

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Reservation occupies the half-open interval [StartTime, EndTime) of a room.
type Reservation struct {
	ID                string    `db:"id"`
	RoomID            string    `db:"room_id"`
	ReservedBy        string    `db:"reserved_by"`
	StartTime         time.Time `db:"start_time"`
	EndTime           time.Time `db:"end_time"`
	ExpectedOccupants int       `db:"expected_occupants"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Overlaps reports whether r intersects [start, end). Shared endpoints do not.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

type AccessCard struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	CardNumber string     `db:"card_number"`
	Status     CardStatus `db:"status"`
	IssuedAt   time.Time  `db:"issued_at"`
}

// AccessLog rows are append-only. CardID is nil once the card is deleted.
type AccessLog struct {
	ID         string     `db:"id"`
	CardID     *string    `db:"card_id"`
	AccessedAt time.Time  `db:"accessed_at"`
	Location   string     `db:"location"`
	AccessType AccessType `db:"access_type"`
	Granted    bool       `db:"granted"`
}
