package registry

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Package represents a registered package. The name is its primary identifier
// and immutable after creation, as is the author reference.
type Package struct {
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	AuthorID      uuid.UUID  `json:"author_id"`
	LatestVersion string     `json:"latest_version,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// PackageVersion represents one published version of a package. Versions are
// immutable: there is no update or delete path, and republishing the same
// version fails rather than overwriting.
type PackageVersion struct {
	Package   string          `json:"package"`
	Version   string          `json:"version"`
	Info      json.RawMessage `json:"info"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
}

// SearchResult is one page of a package search.
type SearchResult struct {
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageCount int        `json:"page_count"`
	Packages  []*Package `json:"packages"`
}
