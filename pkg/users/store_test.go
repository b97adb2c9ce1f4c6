package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoonpkg/rack/pkg/errs"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestCreateUser(t *testing.T) {
	store, mock := newStore(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("raccoon", "raccoon@example.com", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "registered_at"}).AddRow(id, now))

	user, err := store.Create(context.Background(), "raccoon", "raccoon@example.com", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "raccoon", user.Username)
	assert.False(t, user.IsRemoved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := store.Create(context.Background(), "raccoon", "raccoon@example.com", "hash")
	assert.True(t, errs.AlreadyExists(err))
	assert.Equal(t, "user already exists", errs.Detail(err))
}

func TestGetByUsernameNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "registered_at", "is_removed"}))

	_, err := store.GetByUsername(context.Background(), "ghost")
	assert.True(t, errs.NotFound(err))
}

func TestGetByIDReturnsRemovedUser(t *testing.T) {
	store, mock := newStore(t)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "registered_at", "is_removed"}).
		AddRow(id, "raccoon", "raccoon@example.com", "hash", time.Now(), true)
	mock.ExpectQuery("SELECT .+ FROM users WHERE id").WithArgs(id).WillReturnRows(rows)

	// Removal must not hide the row: session claims still resolve, and
	// authorship lookups still work. Only authentication and authorization
	// reject the account.
	user, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, user.IsRemoved)
}

func TestRemoveUser(t *testing.T) {
	store, mock := newStore(t)
	id := uuid.New()
	user := &User{ID: id, Username: "raccoon"}

	mock.ExpectExec("UPDATE users SET is_removed").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Remove(context.Background(), user))
	assert.True(t, user.IsRemoved)
}

func TestRemoveUserTwice(t *testing.T) {
	store, _ := newStore(t)
	user := &User{ID: uuid.New(), IsRemoved: true}

	err := store.Remove(context.Background(), user)
	assert.True(t, errs.NotFound(err))
	assert.Equal(t, "user already deleted", errs.Detail(err))
}

func TestPublicViewOmitsEmail(t *testing.T) {
	user := &User{ID: uuid.New(), Username: "raccoon", Email: "secret@example.com"}

	view := user.Public()
	assert.Equal(t, user.Username, view.Username)

	profile := user.Profile()
	assert.Equal(t, user.Email, profile.Email)
}
