package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/httputil"
	"github.com/raccoonpkg/rack/pkg/middleware"
)

type createTokenRequest struct {
	Label string `json:"label"`
	Scope string `json:"scope"`
}

func (s *Server) listTokens(w http.ResponseWriter, r *http.Request) {
	list, err := s.tokens.List(r.Context(), middleware.UserFrom(r).User)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// createToken is the only place the secret value is ever serialized.
func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Label, "label") ||
		!httputil.RequireNonEmpty(w, req.Scope, "scope") {
		return
	}

	issued, err := s.tokens.Issue(r.Context(), middleware.UserFrom(r).User, req.Label, req.Scope)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, issued)
}

func (s *Server) getToken(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	token, err := s.tokens.Get(r.Context(), id, middleware.UserFrom(r).User)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteSuccess(w, token)
}

func (s *Server) deleteToken(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTokenID(w, r)
	if !ok {
		return
	}

	if err := s.tokens.Revoke(r.Context(), id, middleware.UserFrom(r).User); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteDetail(w, "token has been successfully deleted")
}

func parseTokenID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid token id")
		return uuid.Nil, false
	}
	return id, true
}
