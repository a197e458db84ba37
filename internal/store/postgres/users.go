package postgres

import (
	"context"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const userColumns = `id, email, password_hash, role, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.ext.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, u.ID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return u, err
}

func (s *Store) ListUsers(ctx context.Context, page store.Page) ([]models.User, error) {
	var c conditions
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id` + c.page(page)
	users := []models.User{}
	err := s.selectAll(ctx, &users, query, c.args...)
	return users, err
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	return s.exec(ctx, `
UPDATE users SET email = $2, password_hash = $3, role = $4, updated_at = $5
WHERE id = $1
`, u.ID, u.Email, u.PasswordHash, string(u.Role), u.UpdatedAt)
}

// DeleteUser relies on ON DELETE CASCADE for profiles, cards, roles and reservations.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (s *Store) ListUserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	roles := []models.Role{}
	err := s.selectAll(ctx, &roles, `
SELECT r.name
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = $1
ORDER BY r.name
`, userID)
	return roles, err
}

func (s *Store) AddUserRole(ctx context.Context, userID string, role models.Role) error {
	return s.exec(ctx, `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, r.id FROM roles r WHERE r.name = $2
ON CONFLICT DO NOTHING
`, userID, string(role))
}

func (s *Store) RemoveUserRole(ctx context.Context, userID string, role models.Role) error {
	return s.exec(ctx, `
DELETE FROM user_roles
WHERE user_id = $1 AND role_id = (SELECT id FROM roles WHERE name = $2)
`, userID, string(role))
}
