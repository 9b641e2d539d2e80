package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/repositories"
	apperrors "github.com/dentara/backend/pkg/errors"
)

type contextKey string

const profileContextKey contextKey = "profile"

// AuthMiddleware verifies bearer tokens issued by the auth provider and
// resolves them to local profiles
type AuthMiddleware struct {
	profiles repositories.ProfileRepository
	secret   []byte
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(profiles repositories.ProfileRepository, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		profiles: profiles,
		secret:   []byte(jwtSecret),
	}
}

// ProfileFromContext returns the authenticated profile stored by the
// middleware, or nil for unauthenticated requests
func ProfileFromContext(ctx context.Context) *entities.Profile {
	profile, _ := ctx.Value(profileContextKey).(*entities.Profile)
	return profile
}

// Authenticate validates the request's bearer token and loads the matching
// profile. It is exposed so streaming handlers can run the same checks after
// the response has already started.
func (m *AuthMiddleware) Authenticate(r *http.Request) (*entities.Profile, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.NewUnauthorizedError("missing authorization header")
	}

	tokenString := authHeader
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "Bearer ") {
		tokenString = tokenString[7:]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, apperrors.NewUnauthorizedError("token has no subject")
	}

	profile, err := m.profiles.GetByAuthID(r.Context(), subject)
	if err != nil {
		log.Printf("Warning: failed to resolve profile for auth subject: %v", err)
		return nil, apperrors.NewUnauthorizedError("unknown user")
	}

	return profile, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved profile in the request context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := m.Authenticate(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), profileContextKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose profile does not carry the admin role.
// It must be applied on top of RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := ProfileFromContext(r.Context())
		if !profile.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}
