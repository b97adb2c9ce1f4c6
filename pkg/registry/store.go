// Package registry owns package and version records: creation, lookup,
// version registration with idempotent-conflict semantics, latest-version
// tracking, and the search/pagination algorithm.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/raccoonpkg/rack/pkg/errs"
)

// Store persists packages and versions in PostgreSQL. Uniqueness is enforced
// by the database constraints; the store only translates violations into the
// error taxonomy.
type Store struct {
	db *sql.DB
}

// NewStore creates a package store over the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const packageColumns = "name, description, author_id, latest_version, created_at, updated_at"

// Create registers a new package owned by the author. A package starts with
// no versions; latest_version stays empty until the first publish.
func (s *Store) Create(ctx context.Context, name, description string, authorID uuid.UUID) (*Package, error) {
	pkg := &Package{Name: name, Description: description, AuthorID: authorID}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO packages (name, description, author_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, name, description, authorID).Scan(&pkg.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return nil, errs.Wrap(errs.KindAlreadyExists, "package with this name already exists", err)
		}
		return nil, fmt.Errorf("create package: %w", err)
	}

	return pkg, nil
}

// Get returns the package with the given name.
func (s *Store) Get(ctx context.Context, name string) (*Package, error) {
	pkg := &Package{}
	var description, latest sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT "+packageColumns+" FROM packages WHERE name = $1", name,
	).Scan(&pkg.Name, &description, &pkg.AuthorID, &latest, &pkg.CreatedAt, &pkg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.KindNotFound, "package not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}

	pkg.Description = description.String
	pkg.LatestVersion = latest.String
	return pkg, nil
}

// GetVersion returns one published version of a package.
func (s *Store) GetVersion(ctx context.Context, pkgName, version string) (*PackageVersion, error) {
	v := &PackageVersion{}

	err := s.db.QueryRowContext(ctx, `
		SELECT package, version, info, url, created_at
		FROM package_versions WHERE package = $1 AND version = $2
	`, pkgName, version).Scan(&v.Package, &v.Version, &v.Info, &v.URL, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.KindNotFound, "package version not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get package version: %w", err)
	}

	return v, nil
}

// RegisterVersion commits a published version and bumps the package's
// latest_version. This is the only write path for versions and is called as
// the final step of the publication pipeline, after the blob upload has
// already succeeded. A (package, version) or url collision means a concurrent
// publish won the race; the caller surfaces AlreadyExists and leaves the
// uploaded blob alone.
func (s *Store) RegisterVersion(ctx context.Context, pkgName, version string, info json.RawMessage, url string) (*PackageVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("register version: %w", err)
	}
	defer tx.Rollback()

	v := &PackageVersion{Package: pkgName, Version: version, Info: info, URL: url}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO package_versions (package, version, info, url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, pkgName, version, info, url).Scan(&v.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return nil, errs.Wrap(errs.KindAlreadyExists, "package version already exists", err)
		}
		return nil, fmt.Errorf("register version: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE packages SET latest_version = $1, updated_at = NOW()
		WHERE name = $2
	`, version, pkgName)
	if err != nil {
		return nil, fmt.Errorf("register version: update latest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("register version: %w", err)
	}

	return v, nil
}

// Search returns one page of packages whose name or description contains the
// query, case-insensitively. The page count is never below one, and an
// out-of-range page is clamped down to the last valid page instead of
// erroring. Results are ordered by name so pagination is stable.
func (s *Store) Search(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	where := ""
	args := []interface{}{}
	if query != "" {
		where = " WHERE name ILIKE $1 OR description ILIKE $1"
		args = append(args, "%"+query+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("search packages: count: %w", err)
	}

	pageCount := (total + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}
	if page > pageCount {
		page = pageCount
	}

	listArgs := append(args, size, size*(page-1))
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM packages%s ORDER BY name LIMIT $%d OFFSET $%d",
		packageColumns, where, len(args)+1, len(args)+2,
	), listArgs...)
	if err != nil {
		return nil, fmt.Errorf("search packages: %w", err)
	}
	defer rows.Close()

	result := &SearchResult{Total: total, Page: page, PageCount: pageCount, Packages: []*Package{}}
	for rows.Next() {
		pkg := &Package{}
		var description, latest sql.NullString
		if err := rows.Scan(&pkg.Name, &description, &pkg.AuthorID, &latest, &pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("search packages: scan: %w", err)
		}
		pkg.Description = description.String
		pkg.LatestVersion = latest.String
		result.Packages = append(result.Packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search packages: %w", err)
	}

	return result, nil
}

// Counts returns the number of packages and versions, for the metrics gauges.
func (s *Store) Counts(ctx context.Context) (packages, versions int64, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&packages); err != nil {
		return 0, 0, fmt.Errorf("count packages: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM package_versions").Scan(&versions); err != nil {
		return 0, 0, fmt.Errorf("count versions: %w", err)
	}
	return packages, versions, nil
}

func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
