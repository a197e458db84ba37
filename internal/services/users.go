package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const (
	minPasswordLength = 8
	msgEmailTaken     = "User with this email already exists"
)

type NewUser struct {
	Email    string
	Password string
	Role     models.Role
}

type UserPatch struct {
	Email    *string
	Password *string
	Role     *models.Role
}

type UserService struct {
	Store  store.Store
	Tokens TokenService
	Clock  clock.Clock
}

func (s UserService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

func (s UserService) Create(ctx context.Context, in NewUser) (models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return models.User{}, ErrInvalidInput("Email is required")
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, ErrInvalidInput("Password must be at least 8 characters")
	}
	role, err := models.ParseRole(string(in.Role))
	if err != nil {
		return models.User{}, ErrInvalidInput(err.Error())
	}
	if _, err := s.Store.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, ErrConflict(msgEmailTaken)
	} else if !isNotFound(err) {
		return models.User{}, WrapError(err, "check email")
	}
	hash, err := s.Tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, WrapError(err, "hash password")
	}
	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		return models.User{}, storeErr(err, "", msgEmailTaken, "create user")
	}
	return user, nil
}

func (s UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.Store.GetUser(ctx, id)
	return user, storeErr(err, msgUserNotFound, "", "load user")
}

func (s UserService) List(ctx context.Context, page store.Page) ([]models.User, error) {
	users, err := s.Store.ListUsers(ctx, page)
	if err != nil {
		return nil, WrapError(err, "list users")
	}
	return users, nil
}

func (s UserService) Update(ctx context.Context, id string, patch UserPatch) (models.User, error) {
	user, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, msgUserNotFound, "", "load user")
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return models.User{}, ErrInvalidInput("Email is required")
		}
		if email != user.Email {
			existing, err := s.Store.GetUserByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return models.User{}, ErrConflict(msgEmailTaken)
			}
			if err != nil && !isNotFound(err) {
				return models.User{}, WrapError(err, "check email")
			}
		}
		user.Email = email
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return models.User{}, ErrInvalidInput("Password must be at least 8 characters")
		}
		hash, err := s.Tokens.HashPassword(*patch.Password)
		if err != nil {
			return models.User{}, WrapError(err, "hash password")
		}
		user.PasswordHash = hash
	}
	if patch.Role != nil {
		role, err := models.ParseRole(string(*patch.Role))
		if err != nil {
			return models.User{}, ErrInvalidInput(err.Error())
		}
		user.Role = role
	}
	user.UpdatedAt = s.now()
	if err := s.Store.UpdateUser(ctx, user); err != nil {
		return models.User{}, storeErr(err, msgUserNotFound, msgEmailTaken, "update user")
	}
	return user, nil
}

func (s UserService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteUser(ctx, id), msgUserNotFound, "", "delete user")
}

// Roles returns the primary role followed by any extra assigned roles.
func (s UserService) Roles(ctx context.Context, id string) ([]models.Role, error) {
	user, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgUserNotFound, "", "load user")
	}
	extra, err := s.Store.ListUserRoles(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgUserNotFound, "", "list roles")
	}
	roles := []models.Role{user.Role}
	for _, role := range extra {
		if role != user.Role {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (s UserService) AddRole(ctx context.Context, id string, role models.Role) error {
	return storeErr(s.Store.AddUserRole(ctx, id, role), msgUserNotFound, "", "add role")
}

func (s UserService) RemoveRole(ctx context.Context, id string, role models.Role) error {
	return storeErr(s.Store.RemoveUserRole(ctx, id, role), "Role not assigned to user", "", "remove role")
}

// HasRole reports whether the user holds role as primary or extra role.
func (s UserService) HasRole(ctx context.Context, id string, role models.Role) (bool, error) {
	roles, err := s.Roles(ctx, id)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	if _, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email)); err == nil {
		return nil
	} else if !isNotFound(err) {
		return WrapError(err, "check seed admin")
	}
	if _, err := s.Create(ctx, NewUser{Email: email, Password: password, Role: models.RoleAdmin}); err != nil {
		return err
	}
	log.Printf("seeded admin account %s", normalizeEmail(email))
	return nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
