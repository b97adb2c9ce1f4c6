package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/users"
)

var testConfig = Config{
	SigningKey: []byte("test-signing-key"),
	SessionTTL: time.Hour,
}

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(users.NewStore(db), testConfig), mock
}

func userRows(id uuid.UUID, username, hash string, removed bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "registered_at", "is_removed"}).
		AddRow(id, username, username+"@example.com", hash, time.Now(), removed)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("hunter3", hash))
}

func TestAuthenticateSuccess(t *testing.T) {
	service, mock := newService(t)
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("raccoon").
		WillReturnRows(userRows(id, "raccoon", hash, false))

	user, err := service.Authenticate(context.Background(), "raccoon", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
}

func TestAuthenticateFailureShapes(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	emptyRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "registered_at", "is_removed"})
	}

	tests := []struct {
		name     string
		username string
		password string
		rows     func() *sqlmock.Rows
	}{
		{
			name:     "unknown username",
			username: "ghost",
			password: "hunter2",
			rows:     emptyRows,
		},
		{
			name:     "wrong password",
			username: "raccoon",
			password: "wrong",
			rows:     func() *sqlmock.Rows { return userRows(uuid.New(), "raccoon", hash, false) },
		},
		{
			name:     "removed user",
			username: "raccoon",
			password: "hunter2",
			rows:     func() *sqlmock.Rows { return userRows(uuid.New(), "raccoon", hash, true) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mock := newService(t)
			mock.ExpectQuery("SELECT .+ FROM users WHERE username").
				WillReturnRows(tt.rows())

			// All three cases yield the same (nil, nil) shape.
			user, err := service.Authenticate(context.Background(), tt.username, tt.password)
			assert.NoError(t, err)
			assert.Nil(t, user)
		})
	}
}

func TestSessionClaimRoundTrip(t *testing.T) {
	service, mock := newService(t)
	id := uuid.New()

	token, err := service.IssueSessionClaim(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WillReturnRows(userRows(id, "raccoon", "hash", false))

	user, err := service.ResolveSessionClaim(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestResolveSessionClaimResolvesRemovedUser(t *testing.T) {
	service, mock := newService(t)
	id := uuid.New()

	token, err := service.IssueSessionClaim(id)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WillReturnRows(userRows(id, "raccoon", "hash", true))

	// Claim validity is independent of removal; downstream authorization
	// rejects the removed account.
	user, err := service.ResolveSessionClaim(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, user.IsRemoved)
}

func TestResolveSessionClaimFailures(t *testing.T) {
	service, _ := newService(t)

	_, err := service.ResolveSessionClaim(context.Background(), "not-a-jwt")
	assert.True(t, errs.Unauthenticated(err))

	expired := NewService(nil, Config{SigningKey: testConfig.SigningKey, SessionTTL: -time.Minute})
	token, err := expired.IssueSessionClaim(uuid.New())
	require.NoError(t, err)

	_, err = service.ResolveSessionClaim(context.Background(), token)
	assert.True(t, errs.Unauthenticated(err))

	otherKey := NewService(nil, Config{SigningKey: []byte("other-key"), SessionTTL: time.Hour})
	token, err = otherKey.IssueSessionClaim(uuid.New())
	require.NoError(t, err)

	_, err = service.ResolveSessionClaim(context.Background(), token)
	assert.True(t, errs.Unauthenticated(err))
}

func TestResolveSessionClaimUnknownUser(t *testing.T) {
	service, mock := newService(t)

	token, err := service.IssueSessionClaim(uuid.New())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "registered_at", "is_removed"}))

	_, err = service.ResolveSessionClaim(context.Background(), token)
	assert.True(t, errs.Unauthenticated(err))
}
