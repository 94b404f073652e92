package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const contextKeyStaffID contextKey = "staff_id"

// StaffClaims — JWT-клеймы сотрудника магазина.
type StaffClaims struct {
	StaffID string `json:"staff_id"`
	jwt.RegisteredClaims
}

// Authenticator проверяет JWT сотрудника (HS256) и кладёт staff_id в контекст.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator создаёт middleware-аутентификатор с общим секретом.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware отклоняет запросы без валидного Bearer-токена.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := a.parseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyStaffID, claims.StaffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) parseToken(token string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.StaffID == "" {
		return nil, fmt.Errorf("token has no staff_id claim")
	}
	return claims, nil
}

// IssueToken выпускает токен сотрудника. Используется dev-инструментами и тестами.
func (a *Authenticator) IssueToken(staffID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		StaffID: staffID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// staffIDFromContext достаёт staff_id, положенный middleware.
func staffIDFromContext(ctx context.Context) string {
	staffID, _ := ctx.Value(contextKeyStaffID).(string)
	return staffID
}
