package api

import (
	"net/http"

	"github.com/raccoonpkg/rack/pkg/httputil"
)

// downloadFile streams a published version archive. The version row is
// resolved first and the blob is fetched from its recorded url, so a blob
// that never made it into the registry is not reachable here.
func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	pkgName, ok := httputil.ParsePathStringOrError(w, r, "package")
	if !ok {
		return
	}
	version, ok := httputil.ParsePathStringOrError(w, r, "version")
	if !ok {
		return
	}

	ver, err := s.packages.GetVersion(r.Context(), pkgName, version)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	data, err := s.storage.Download(r.Context(), ver.URL)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/tar+gzip")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
