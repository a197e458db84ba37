package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const (
	msgStudentNotFound    = "Student not found"
	msgStudentEmailTaken  = "Student with this email already exists"
	msgStudentCardIDTaken = "Student with this card ID already exists"
)

type NewStudent struct {
	UserID        string
	FullName      string
	StudentCardID string
	Email         string
	ClassName     string
	PhoneNumber   *string
}

type StudentPatch struct {
	FullName      *string
	StudentCardID *string
	Email         *string
	ClassName     *string
	PhoneNumber   *string
}

type ClassCount struct {
	ClassName string `json:"class_name"`
	Count     int    `json:"count"`
}

type StudentStats struct {
	Total             int          `json:"total_students"`
	UniqueClasses     int          `json:"unique_classes"`
	WithPhone         int          `json:"students_with_phone"`
	ClassDistribution []ClassCount `json:"class_distribution"`
}

type StudentService struct {
	Store store.Store
	Clock clock.Clock
}

func (s StudentService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

func (s StudentService) Create(ctx context.Context, in NewStudent) (models.Student, error) {
	if _, err := s.Store.GetUser(ctx, in.UserID); err != nil {
		return models.Student{}, storeErr(err, msgUserNotFound, "", "load user")
	}
	if _, err := s.Store.GetStudentByUser(ctx, in.UserID); err == nil {
		return models.Student{}, ErrConflict("User already has a student profile")
	} else if !isNotFound(err) {
		return models.Student{}, WrapError(err, "check student profile")
	}
	student := models.Student{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		FullName:      strings.TrimSpace(in.FullName),
		StudentCardID: strings.TrimSpace(in.StudentCardID),
		Email:         normalizeEmail(in.Email),
		ClassName:     strings.TrimSpace(in.ClassName),
		PhoneNumber:   in.PhoneNumber,
		RegisteredAt:  s.now(),
	}
	if err := s.checkUnique(ctx, student); err != nil {
		return models.Student{}, err
	}
	if err := s.Store.CreateStudent(ctx, student); err != nil {
		return models.Student{}, storeErr(err, msgUserNotFound, "Student profile already exists", "create student")
	}
	return student, nil
}

func (s StudentService) Get(ctx context.Context, id string) (models.Student, error) {
	st, err := s.Store.GetStudent(ctx, id)
	return st, storeErr(err, msgStudentNotFound, "", "load student")
}

func (s StudentService) GetByUser(ctx context.Context, userID string) (models.Student, error) {
	st, err := s.Store.GetStudentByUser(ctx, userID)
	return st, storeErr(err, "Student profile not found for this user", "", "load student")
}

func (s StudentService) List(ctx context.Context, filter store.StudentFilter) ([]models.Student, error) {
	items, err := s.Store.ListStudents(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list students")
	}
	return items, nil
}

func (s StudentService) Update(ctx context.Context, id string, patch StudentPatch) (models.Student, error) {
	student, err := s.Store.GetStudent(ctx, id)
	if err != nil {
		return models.Student{}, storeErr(err, msgStudentNotFound, "", "load student")
	}
	if patch.FullName != nil {
		student.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.StudentCardID != nil {
		student.StudentCardID = strings.TrimSpace(*patch.StudentCardID)
	}
	if patch.Email != nil {
		student.Email = normalizeEmail(*patch.Email)
	}
	if patch.ClassName != nil {
		student.ClassName = strings.TrimSpace(*patch.ClassName)
	}
	if patch.PhoneNumber != nil {
		student.PhoneNumber = patch.PhoneNumber
	}
	if err := s.checkUnique(ctx, student); err != nil {
		return models.Student{}, err
	}
	if err := s.Store.UpdateStudent(ctx, student); err != nil {
		return models.Student{}, storeErr(err, msgStudentNotFound, msgStudentEmailTaken, "update student")
	}
	return student, nil
}

func (s StudentService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteStudent(ctx, id), msgStudentNotFound, "", "delete student")
}

func (s StudentService) Stats(ctx context.Context) (StudentStats, error) {
	students, err := s.Store.ListStudents(ctx, store.StudentFilter{})
	if err != nil {
		return StudentStats{}, WrapError(err, "student stats")
	}
	stats := StudentStats{Total: len(students), ClassDistribution: []ClassCount{}}
	classes := map[string]int{}
	for _, st := range students {
		classes[st.ClassName]++
		if st.PhoneNumber != nil && *st.PhoneNumber != "" {
			stats.WithPhone++
		}
	}
	stats.UniqueClasses = len(classes)
	for _, name := range sortedByCount(classes) {
		stats.ClassDistribution = append(stats.ClassDistribution, ClassCount{ClassName: name, Count: classes[name]})
	}
	return stats, nil
}

func (s StudentService) checkUnique(ctx context.Context, st models.Student) error {
	taken, err := s.Store.StudentEmailTaken(ctx, st.Email, st.ID)
	if err != nil {
		return WrapError(err, "check student email")
	}
	if taken {
		return ErrConflict(msgStudentEmailTaken)
	}
	taken, err = s.Store.StudentCardIDTaken(ctx, st.StudentCardID, st.ID)
	if err != nil {
		return WrapError(err, "check student card id")
	}
	if taken {
		return ErrConflict(msgStudentCardIDTaken)
	}
	return nil
}

// sortedByCount orders keys by descending count, then by name.
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
