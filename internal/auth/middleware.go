// internal/auth/middleware.go
// Request authentication. Tokens are issued by the accounts service; this
// package only validates them and exposes the member id to handlers.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sparkevents/spark-backend/internal/common/utils"
)

type contextKey string

const memberIDKey contextKey = "memberID"

// Claims is the token payload shared with the accounts service.
type Claims struct {
	MemberID int64  `json:"member_id"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret       []byte
	adminAPIKeyHash string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret, adminAPIKeyHash string) *Middleware {
	return &Middleware{
		jwtSecret:       []byte(jwtSecret),
		adminAPIKeyHash: adminAPIKeyHash,
	}
}

// Authenticate verifies the JWT access token and adds the member id to the
// request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.parseToken(token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), memberIDKey, claims.MemberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates the administrative trigger surface. The key is compared
// against a bcrypt hash so the plaintext never lives in config.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if key == "" || m.adminAPIKeyHash == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Admin key required")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.adminAPIKeyHash), []byte(key)); err != nil {
			utils.RespondWithError(w, http.StatusForbidden, "Invalid admin key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func (m *Middleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// MemberIDFromContext extracts the authenticated member id from the context
func MemberIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(memberIDKey).(int64)
	return id, ok
}
