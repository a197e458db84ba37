package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const studentColumns = `id, user_id, full_name, student_card_id, email, class_name, phone_number, registered_at`

func (s *Store) CreateStudent(ctx context.Context, st models.Student) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO students (`+studentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, st.ID, st.UserID, st.FullName, st.StudentCardID, st.Email, st.ClassName, st.PhoneNumber, st.RegisteredAt)
	return translate(err)
}

func (s *Store) GetStudent(ctx context.Context, id string) (models.Student, error) {
	var st models.Student
	err := s.get(ctx, &st, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	return st, err
}

func (s *Store) GetStudentByUser(ctx context.Context, userID string) (models.Student, error) {
	var st models.Student
	err := s.get(ctx, &st, `SELECT `+studentColumns+` FROM students WHERE user_id = $1`, userID)
	return st, err
}

func (s *Store) ListStudents(ctx context.Context, filter store.StudentFilter) ([]models.Student, error) {
	var c conditions
	if filter.ClassName != "" {
		c.add("class_name = ?", filter.ClassName)
	}
	query := `SELECT ` + studentColumns + ` FROM students` + c.where() + ` ORDER BY full_name, id`
	query += c.page(filter.Page)
	out := []models.Student{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) UpdateStudent(ctx context.Context, st models.Student) error {
	return s.exec(ctx, `
UPDATE students
SET full_name = $2, student_card_id = $3, email = $4, class_name = $5, phone_number = $6
WHERE id = $1
`, st.ID, st.FullName, st.StudentCardID, st.Email, st.ClassName, st.PhoneNumber)
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM students WHERE id = $1`, id)
}

func (s *Store) StudentEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := s.get(ctx, &exists, `
SELECT EXISTS(SELECT 1 FROM students WHERE lower(email) = lower($1) AND id::text <> $2)
`, email, excludeID)
	return exists, err
}

func (s *Store) StudentCardIDTaken(ctx context.Context, cardID, excludeID string) (bool, error) {
	var exists bool
	err := s.get(ctx, &exists, `
SELECT EXISTS(SELECT 1 FROM students WHERE student_card_id = $1 AND id::text <> $2)
`, cardID, excludeID)
	return exists, err
}

const professorColumns = `id, user_id, full_name, email, department, phone_number, office, created_at`

func (s *Store) CreateProfessor(ctx context.Context, p models.Professor) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO professors (`+professorColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, p.ID, p.UserID, p.FullName, p.Email, p.Department, p.PhoneNumber, p.Office, p.CreatedAt)
	return translate(err)
}

func (s *Store) GetProfessor(ctx context.Context, id string) (models.Professor, error) {
	var p models.Professor
	err := s.get(ctx, &p, `SELECT `+professorColumns+` FROM professors WHERE id = $1`, id)
	return p, err
}

func (s *Store) GetProfessorByUser(ctx context.Context, userID string) (models.Professor, error) {
	var p models.Professor
	err := s.get(ctx, &p, `SELECT `+professorColumns+` FROM professors WHERE user_id = $1`, userID)
	return p, err
}

func (s *Store) ListProfessors(ctx context.Context, filter store.ProfessorFilter) ([]models.Professor, error) {
	var c conditions
	if filter.Department != "" {
		c.add("department = ?", filter.Department)
	}
	query := `SELECT ` + professorColumns + ` FROM professors` + c.where() + ` ORDER BY full_name, id`
	query += c.page(filter.Page)
	out := []models.Professor{}
	err := s.selectAll(ctx, &out, query, c.args...)
	return out, err
}

func (s *Store) UpdateProfessor(ctx context.Context, p models.Professor) error {
	return s.exec(ctx, `
UPDATE professors
SET full_name = $2, email = $3, department = $4, phone_number = $5, office = $6
WHERE id = $1
`, p.ID, p.FullName, p.Email, p.Department, p.PhoneNumber, p.Office)
}

func (s *Store) DeleteProfessor(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM professors WHERE id = $1`, id)
}

func (s *Store) ProfessorEmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := s.get(ctx, &exists, `
SELECT EXISTS(SELECT 1 FROM professors WHERE lower(email) = lower($1) AND id::text <> $2)
`, email, excludeID)
	return exists, err
}
