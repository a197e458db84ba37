package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"campus-access-backend/internal/models"
	"campus-access-backend/internal/services"
)

// RequestLogger logs method, path, status, size and latency. chi's wrapper
// keeps Hijacker and Flusher available for the websocket stream.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("%s %s %d %dB %s", r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
	})
}

type contextKey string

const ctxUser contextKey = "user"

const msgNotAllowed = "Not enough permissions"

// WithAuth resolves the bearer token to a user that still exists.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteError(w, http.StatusUnauthorized, "auth_failed", "Not authenticated")
			return
		}
		user, err := s.authenticate(r.Context(), strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

func (s *Server) authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.Tokens.VerifyToken(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.Users.Get(ctx, claims.UserID)
	if services.IsCode(err, "not_found") {
		return models.User{}, services.ErrUnauthorized("Could not validate credentials")
	}
	return user, err
}

func CurrentUser(r *http.Request) models.User {
	user, _ := r.Context().Value(ctxUser).(models.User)
	return user
}

// RequireRole admits users holding role as primary or extra role.
func (s *Server) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := s.hasRole(r, role)
			if err != nil {
				WriteServiceError(w, r, err)
				return
			}
			if !ok {
				WriteError(w, http.StatusForbidden, "forbidden", msgNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) hasRole(r *http.Request, role models.Role) (bool, error) {
	user := CurrentUser(r)
	if user.Role == role {
		return true, nil
	}
	return s.Users.HasRole(r.Context(), user.ID, role)
}
