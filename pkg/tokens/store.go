package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// Store persists API tokens in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a token store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const tokenColumns = "id, user_id, secret, label, scope, created_at, last_used_at"

// Insert stores a freshly issued token. The (user, label) pair is unique so a
// user cannot hold two tokens under the same name.
func (s *Store) Insert(ctx context.Context, token *APIToken) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO api_tokens (user_id, secret, label, scope)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, token.UserID, token.Secret, token.Label, token.Scope).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return errs.Wrap(errs.KindAlreadyExists, "token with this name already exists", err)
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// Get returns the token with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*APIToken, error) {
	token := &APIToken{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+tokenColumns+" FROM api_tokens WHERE id = $1", id,
	).Scan(&token.ID, &token.UserID, &token.Secret, &token.Label, &token.Scope,
		&token.CreatedAt, &token.LastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.KindNotFound, "token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// ResolveSecret returns the token carrying the given secret value and records
// the use. Callers treat the NotFound as an authentication failure.
func (s *Store) ResolveSecret(ctx context.Context, secret string) (*APIToken, error) {
	token := &APIToken{}
	err := s.db.QueryRowContext(ctx, `
		UPDATE api_tokens SET last_used_at = NOW()
		WHERE secret = $1
		RETURNING `+tokenColumns, secret,
	).Scan(&token.ID, &token.UserID, &token.Secret, &token.Label, &token.Scope,
		&token.CreatedAt, &token.LastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.KindNotFound, "token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return token, nil
}

// ListByUser returns all tokens owned by the given user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) ([]*APIToken, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+tokenColumns+" FROM api_tokens WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []*APIToken{}
	for rows.Next() {
		token := &APIToken{}
		if err := rows.Scan(&token.ID, &token.UserID, &token.Secret, &token.Label,
			&token.Scope, &token.CreatedAt, &token.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

// Delete revokes the token immediately. Requests already authenticated with it
// are unaffected; the next resolution fails.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM api_tokens WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// CountActive returns the number of live tokens, for the metrics gauge.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_tokens").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return count, nil
}

func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
