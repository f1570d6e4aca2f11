package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const adminRole = "admin"

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuth guards the admin routes. Staff sign in with the shared admin
// password and receive a short-lived token; scripts may send the password
// directly in X-Admin-Password instead.
type AdminAuth struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewAdminAuth(password, secret string, ttl time.Duration, clk clock.Clock) (*AdminAuth, error) {
	if password == "" {
		return nil, errors.New("admin password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash admin password")
	}
	if secret == "" {
		secret = password
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &AdminAuth{hash: hash, secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

func (a *AdminAuth) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

// Login exchanges the admin password for a signed token.
func (a *AdminAuth) Login(password string) (string, time.Time, error) {
	if !a.checkPassword(password) {
		return "", time.Time{}, ErrUnauthorized
	}
	now := a.clock.Now()
	expires := now.Add(a.ttl)
	claims := adminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign admin token")
	}
	return token, expires, nil
}

func (a *AdminAuth) ValidateToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid || claims.Role != adminRole {
		return ErrInvalidToken
	}
	return nil
}

func (a *AdminAuth) authorize(r *http.Request) error {
	if pw := r.Header.Get("X-Admin-Password"); pw != "" {
		if a.checkPassword(pw) {
			return nil
		}
		return ErrUnauthorized
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return ErrUnauthorized
	}
	return a.ValidateToken(strings.TrimSpace(token))
}

// Middleware rejects requests that carry neither a valid token nor the
// admin password.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.authorize(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Admin authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
