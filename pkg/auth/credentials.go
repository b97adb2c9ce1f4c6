// Package auth is the credential service: password verification, bcrypt
// hashing, and signed session claims.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/users"
)

// Config carries the process-wide signing configuration. It is injected
// explicitly so the service stays testable in isolation.
type Config struct {
	SigningKey []byte
	SessionTTL time.Duration
}

// dummyHash is compared against when the username does not exist, so the
// failure path costs the same as a real password check.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service issues and validates session credentials against the identity store.
type Service struct {
	users *users.Store
	cfg   Config
}

// NewService creates a credential service.
func NewService(userStore *users.Store, cfg Config) *Service {
	return &Service{users: userStore, cfg: cfg}
}

// Authenticate looks up an active user by username and verifies the password.
// Unknown username, wrong password and removed account all yield (nil, nil):
// the result shape never distinguishes them.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errs.NotFound(err) {
			VerifyPassword(password, dummyHash)
			return nil, nil
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil
	}
	if user.IsRemoved {
		return nil, nil
	}

	return user, nil
}

// IssueSessionClaim produces a signed bearer token for the user.
func (s *Service) IssueSessionClaim(userID uuid.UUID) (string, error) {
	return signToken(userID, s.cfg.SigningKey, s.cfg.SessionTTL)
}

// ResolveSessionClaim validates a bearer token and resolves the embedded
// identity. A valid claim for a soft-removed user still resolves; rejecting
// removed users is the job of downstream authorization, not claim validation.
func (s *Service) ResolveSessionClaim(ctx context.Context, token string) (*users.User, error) {
	userID, err := parseToken(token, s.cfg.SigningKey)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errs.NotFound(err) {
			return nil, errs.New(errs.KindUnauthenticated, "could not validate credentials")
		}
		return nil, fmt.Errorf("resolve session claim: %w", err)
	}

	return user, nil
}
