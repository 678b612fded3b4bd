// Package auth implements password login and signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
)

// ErrInvalidCredentials is the only error the login path exposes for a bad
// email or password, so the response never leaks which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("cashtracker"), bcrypt.MinCost)

// Service authenticates users and issues session tokens.
type Service struct {
	users  finance.UserStore
	tokens *TokenManager
}

func NewService(users finance.UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies the password and returns a session token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", core.User{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Burn a hash comparison anyway so lookup misses take as long as
		// password mismatches.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", core.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", core.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", core.User{}, fmt.Errorf("issue session token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user, nil
}

// Verify resolves a session token to the user id it was issued for.
func (s *Service) Verify(token string) (string, error) {
	return s.tokens.Verify(token)
}

// SessionTTL reports the lifetime of issued session tokens.
func (s *Service) SessionTTL() time.Duration {
	return s.tokens.SessionTTL()
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, email, password string) (core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, errors.New("invalid email")
	}
	if len(password) < 8 {
		return core.User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", user.ID)
	return user, nil
}

// SetPassword replaces the user's password hash.
func (s *Service) SetPassword(ctx context.Context, email, password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a token whose subject is the user id.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns its subject. Expired, malformed or
// wrongly signed tokens all map to ErrInvalidCredentials.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// SessionTTL reports how long issued tokens stay valid, used to bound the
// cookie lifetime.
func (m *TokenManager) SessionTTL() time.Duration {
	return m.ttl
}
