package publish

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoonpkg/rack/pkg/blob"
	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/observability"
	"github.com/raccoonpkg/rack/pkg/registry"
	"github.com/raccoonpkg/rack/pkg/tokens"
	"github.com/raccoonpkg/rack/pkg/users"
)

type pipelineFixture struct {
	pipeline *Pipeline
	mock     sqlmock.Sqlmock
	storage  *blob.MemoryGateway
	metrics  *observability.Metrics
}

func newPipeline(t *testing.T) *pipelineFixture {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	packages := registry.NewStore(db)
	storage := blob.NewMemoryGateway()
	metrics := observability.NewMetrics(nil)
	pipeline := NewPipeline(packages, tokens.NewService(tokens.NewStore(db), packages), storage, metrics)
	return &pipelineFixture{pipeline: pipeline, mock: mock, storage: storage, metrics: metrics}
}

func (f *pipelineFixture) expectPackage(name string, authorID uuid.UUID) {
	rows := sqlmock.NewRows([]string{"name", "description", "author_id", "latest_version", "created_at", "updated_at"}).
		AddRow(name, "a package", authorID, nil, time.Now(), nil)
	f.mock.ExpectQuery("SELECT (.+) FROM packages WHERE name").WithArgs(name).WillReturnRows(rows)
}

const manifestJSON = `{
	"name": "libx",
	"version": "2.0.0-beta.1+build.5",
	"description": "extended library",
	"license": "MIT",
	"dependencies": {"liby": "^1.2.3"}
}`

func TestPublishCommitsVersion(t *testing.T) {
	f := newPipeline(t)
	author := uuid.New()
	archive := buildArchive(t, true, map[string][]byte{"package.json": []byte(manifestJSON)})

	f.expectPackage("libx", author)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO package_versions").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	f.mock.ExpectExec("UPDATE packages SET latest_version").
		WithArgs("2.0.0-beta.1+build.5", "libx").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	actor := tokens.UserActor{User: &users.User{ID: author}}
	version, err := f.pipeline.Publish(context.Background(), actor, archive)
	require.NoError(t, err)

	assert.Equal(t, "libx", version.Package)
	assert.Equal(t, "2.0.0-beta.1+build.5", version.Version)
	assert.Equal(t, "/versions/libx-2.0.0-beta.1+build.5.tar.gz", version.URL)
	assert.JSONEq(t, manifestJSON, string(version.Info))

	stored, err := f.storage.Download(context.Background(), version.URL)
	require.NoError(t, err)
	assert.Equal(t, archive, stored)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PublishTotal.WithLabelValues("committed")))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPublishRejectsNonArchiveEarly(t *testing.T) {
	f := newPipeline(t)

	actor := tokens.UserActor{User: &users.User{ID: uuid.New()}}
	_, err := f.pipeline.Publish(context.Background(), actor, []byte("not a tarball"))

	assert.Equal(t, errs.KindPackage, errs.KindOf(err))
	assert.Equal(t, 0, f.storage.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PublishTotal.WithLabelValues("rejected")))
	require.NoError(t, f.mock.ExpectationsWereMet(), "nothing should touch the registry")
}

func TestPublishForbiddenBeforeUpload(t *testing.T) {
	f := newPipeline(t)
	archive := buildArchive(t, true, map[string][]byte{"package.json": []byte(manifestJSON)})

	f.expectPackage("libx", uuid.New())

	actor := tokens.UserActor{User: &users.User{ID: uuid.New()}}
	_, err := f.pipeline.Publish(context.Background(), actor, archive)

	assert.True(t, errs.Forbidden(err))
	assert.Equal(t, 0, f.storage.Len(), "nothing should reach storage without authorization")
}

func TestPublishTokenScopeMismatch(t *testing.T) {
	f := newPipeline(t)
	author := uuid.New()
	archive := buildArchive(t, true, map[string][]byte{"package.json": []byte(manifestJSON)})

	f.expectPackage("libx", author)

	actor := tokens.TokenActor{Token: &tokens.APIToken{UserID: author, Scope: "liby"}}
	_, err := f.pipeline.Publish(context.Background(), actor, archive)

	assert.True(t, errs.Forbidden(err))
	assert.Equal(t, "wrong api token", errs.Detail(err))
}

func TestPublishRaceLeavesBlobOrphaned(t *testing.T) {
	f := newPipeline(t)
	author := uuid.New()
	archive := buildArchive(t, true, map[string][]byte{"package.json": []byte(manifestJSON)})

	f.expectPackage("libx", author)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery("INSERT INTO package_versions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "package_versions_pkey"})
	f.mock.ExpectRollback()

	actor := tokens.UserActor{User: &users.User{ID: author}}
	_, err := f.pipeline.Publish(context.Background(), actor, archive)

	assert.True(t, errs.AlreadyExists(err))
	assert.Equal(t, "package version already exists", errs.Detail(err))
	assert.Equal(t, 1, f.storage.Len(), "the uploaded blob stays; the winner overwrote the same path")
}
