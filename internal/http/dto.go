package httpapi

import (
	"time"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
)

type UserDTO struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func userDTO(u models.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

type StudentDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FullName      string    `json:"full_name"`
	StudentCardID string    `json:"student_card_id"`
	Email         string    `json:"email"`
	ClassName     string    `json:"class_name"`
	PhoneNumber   *string   `json:"phone_number"`
	RegisteredAt  time.Time `json:"registered_at"`
}

func studentDTO(st models.Student) StudentDTO {
	return StudentDTO{
		ID:            st.ID,
		UserID:        st.UserID,
		FullName:      st.FullName,
		StudentCardID: st.StudentCardID,
		Email:         st.Email,
		ClassName:     st.ClassName,
		PhoneNumber:   st.PhoneNumber,
		RegisteredAt:  st.RegisteredAt,
	}
}

type ProfessorDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Department  *string   `json:"department"`
	PhoneNumber *string   `json:"phone_number"`
	Office      *string   `json:"office"`
	CreatedAt   time.Time `json:"created_at"`
}

func professorDTO(p models.Professor) ProfessorDTO {
	return ProfessorDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		FullName:    p.FullName,
		Email:       p.Email,
		Department:  p.Department,
		PhoneNumber: p.PhoneNumber,
		Office:      p.Office,
		CreatedAt:   p.CreatedAt,
	}
}

type RoomDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func roomDTO(r models.Room) RoomDTO {
	return RoomDTO{ID: r.ID, Name: r.Name, Location: r.Location, Capacity: r.Capacity, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

type ReservationDTO struct {
	ID                string    `json:"id"`
	RoomID            string    `json:"room_id"`
	ReservedBy        string    `json:"reserved_by"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	ExpectedOccupants int       `json:"expected_occupants"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func reservationDTO(r models.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:                r.ID,
		RoomID:            r.RoomID,
		ReservedBy:        r.ReservedBy,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		ExpectedOccupants: r.ExpectedOccupants,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type ConflictDTO struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	ReservedBy string    `json:"reserved_by"`
}

type AvailabilityDTO struct {
	RoomID      string        `json:"room_id"`
	RoomName    string        `json:"room_name"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	IsAvailable bool          `json:"is_available"`
	Conflicts   []ConflictDTO `json:"conflicting_reservations"`
}

func availabilityDTO(a services.Availability) AvailabilityDTO {
	out := AvailabilityDTO{
		RoomID:      a.RoomID,
		RoomName:    a.RoomName,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		IsAvailable: a.IsAvailable,
		Conflicts:   make([]ConflictDTO, 0, len(a.Conflicts)),
	}
	for _, c := range a.Conflicts {
		out.Conflicts = append(out.Conflicts, ConflictDTO{ID: c.ID, StartTime: c.StartTime, EndTime: c.EndTime, ReservedBy: c.ReservedBy})
	}
	return out
}

type CardDTO struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	CardNumber string            `json:"card_number"`
	Status     models.CardStatus `json:"status"`
	IssuedAt   time.Time         `json:"issued_at"`
}

func cardDTO(c models.AccessCard) CardDTO {
	return CardDTO{ID: c.ID, UserID: c.UserID, CardNumber: c.CardNumber, Status: c.Status, IssuedAt: c.IssuedAt}
}

// mapAll converts a slice for list responses; the result is never nil.
func mapAll[T, D any](items []T, fn func(T) D) []D {
	out := make([]D, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
