package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

// LoginLimiter throttles failed login attempts per key.
type LoginLimiter interface {
	// Allow reports whether another attempt for key is permitted.
	Allow(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}

type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLimiter) Fail(context.Context, string) error          { return nil }
func (NoopLimiter) Reset(context.Context, string) error         { return nil }

// RedisLimiter keeps a fixed-window failure counter per email in redis.
type RedisLimiter struct {
	Client      *redis.Client
	MaxAttempts int
	Window      time.Duration
}

func loginKey(key string) string {
	return "login:failures:" + key
}

func (l RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.Client.Get(ctx, loginKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return count < l.MaxAttempts, nil
}

func (l RedisLimiter) Fail(ctx context.Context, key string) error {
	count, err := l.Client.Incr(ctx, loginKey(key)).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.Client.Expire(ctx, loginKey(key), l.Window).Err()
	}
	return nil
}

func (l RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.Client.Del(ctx, loginKey(key)).Err()
}

type AuthService struct {
	Store   store.UserStore
	Tokens  TokenService
	Limiter LoginLimiter
}

type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	User        models.User
}

const badCredentials = "Incorrect email or password"

// Authenticate answers unknown emails and wrong passwords with the same error.
func (s AuthService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	limiter := s.Limiter
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		// fail open while redis is unreachable
		log.Printf("login limiter unavailable: %v", err)
		allowed = true
	}
	if !allowed {
		return models.User{}, ErrTooManyRequests("Too many failed login attempts, try again later")
	}
	user, err := s.Store.GetUserByEmail(ctx, key)
	if err != nil || !s.Tokens.VerifyPassword(password, user.PasswordHash) {
		if err != nil && !isNotFound(err) {
			return models.User{}, WrapError(err, "load user")
		}
		if ferr := limiter.Fail(ctx, key); ferr != nil {
			log.Printf("login limiter fail: %v", ferr)
		}
		return models.User{}, ErrUnauthorized(badCredentials)
	}
	if rerr := limiter.Reset(ctx, key); rerr != nil {
		log.Printf("login limiter reset: %v", rerr)
	}
	return user, nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	token, _, err := s.Tokens.IssueToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.Tokens.AccessTTL.Seconds()),
		User:        user,
	}, nil
}
