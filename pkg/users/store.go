// Package users is the identity store: durable user records on PostgreSQL,
// including the soft-removal state that blocks authentication and new writes
// without erasing authorship history.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// Store persists users in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = "id, username, email, hashed_password, registered_at, is_removed"

// Create inserts a new user. The password hash must already be computed by the
// credential service.
func (s *Store) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	user := &User{Username: username, Email: email, PasswordHash: passwordHash}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, registered_at
	`, username, email, passwordHash).Scan(&user.ID, &user.RegisteredAt)
	if err != nil {
		if uniqueViolation(err) {
			return nil, errs.Wrap(errs.KindAlreadyExists, "user already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id, removed or not.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.get(ctx, "id = $1", id)
}

// GetByUsername returns the user with the given username, removed or not.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.get(ctx, "username = $1", username)
}

func (s *Store) get(ctx context.Context, where string, arg interface{}) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where, arg,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.RegisteredAt, &user.IsRemoved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update persists changed username, email and password hash.
func (s *Store) Update(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = $1, email = $2, hashed_password = $3
		WHERE id = $4
	`, user.Username, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		if uniqueViolation(err) {
			return errs.Wrap(errs.KindAlreadyExists, "username already taken", err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Remove soft-deletes the user. The row persists so package authorship stays
// intact, but authentication and publication reject the account from now on.
func (s *Store) Remove(ctx context.Context, user *User) error {
	if user.IsRemoved {
		return errs.New(errs.KindNotFound, "user already deleted")
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_removed = TRUE WHERE id = $1", user.ID)
	if err != nil {
		return fmt.Errorf("remove user: %w", err)
	}

	user.IsRemoved = true
	return nil
}

// CountActive returns the number of non-removed users, for the metrics gauge.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE NOT is_removed").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
