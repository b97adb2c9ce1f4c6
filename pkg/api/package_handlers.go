package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/raccoonpkg/rack/pkg/errs"
	"github.com/raccoonpkg/rack/pkg/httputil"
	"github.com/raccoonpkg/rack/pkg/middleware"
	"github.com/raccoonpkg/rack/pkg/observability"
	"github.com/raccoonpkg/rack/pkg/registry"
)

type createPackageRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// versionResponse is a PackageVersion with the owning package embedded, the
// shape clients use to render a version page in one request.
type versionResponse struct {
	Package   *registry.Package `json:"package"`
	Version   string            `json:"version"`
	Info      json.RawMessage   `json:"info"`
	URL       string            `json:"url"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s *Server) createPackage(w http.ResponseWriter, r *http.Request) {
	var req createPackageRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	user := middleware.UserFrom(r).User
	pkg, err := s.packages.Create(r.Context(), req.Name, req.Description, user.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, pkg)
}

func (s *Server) searchPackages(w http.ResponseWriter, r *http.Request) {
	q := httputil.ParseQueryString(r, "q", "")

	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil || page < 1 {
		httputil.WriteBadRequest(w, "page must be a positive integer")
		return
	}
	size, err := httputil.ParseQueryInt(r, "size", 20)
	if err != nil || size < 1 || size >= 100 {
		httputil.WriteBadRequest(w, "size must be between 1 and 99")
		return
	}

	result, err := s.packages.Search(r.Context(), q, page, size)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	pkg, err := s.packages.Get(r.Context(), name)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, pkg)
}

func (s *Server) getPackageVersion(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}
	versionStr, ok := httputil.ParsePathStringOrError(w, r, "version")
	if !ok {
		return
	}

	version, err := s.packages.GetVersion(r.Context(), name, versionStr)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	pkg, err := s.packages.Get(r.Context(), version.Package)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, versionResponse{
		Package:   pkg,
		Version:   version.Version,
		Info:      version.Info,
		URL:       version.URL,
		CreatedAt: version.CreatedAt,
	})
}

// publishVersion accepts a multipart upload with the archive in the
// "version" field and runs the publication pipeline under the caller's
// actor, user or token.
func (s *Server) publishVersion(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("version")
	if err != nil {
		httputil.WriteBadRequest(w, "version file is required")
		return
	}
	defer file.Close()

	archive, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteBadRequest(w, "failed to read uploaded file")
		return
	}

	actor := middleware.ActorFrom(r)
	version, err := s.pipeline.Publish(r.Context(), actor, archive)
	if err != nil {
		if errs.KindOf(err) == errs.KindInternal {
			observability.FromContext(r.Context()).WithError(err).Error("publish failed")
		}
		httputil.WriteAppError(w, err)
		return
	}

	pkg, err := s.packages.Get(r.Context(), version.Package)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, versionResponse{
		Package:   pkg,
		Version:   version.Version,
		Info:      version.Info,
		URL:       version.URL,
		CreatedAt: version.CreatedAt,
	})
}
