package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raccoonpkg/rack/pkg/auth"
	"github.com/raccoonpkg/rack/pkg/httputil"
	"github.com/raccoonpkg/rack/pkg/middleware"
	"github.com/raccoonpkg/rack/pkg/observability"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type changeProfileRequest struct {
	Password    string  `json:"password"`
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	NewPassword *string `json:"new_password"`
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Username, "username") ||
		!httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to hash password")
		httputil.WriteInternalError(w, err)
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user.Public())
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteBadRequest(w, "invalid form data")
		return
	}

	user, err := s.credentials.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("authentication failed")
		httputil.WriteInternalError(w, err)
		return
	}
	if user == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		httputil.WriteUnauthorized(w, "incorrect username or password")
		return
	}

	claim, err := s.credentials.IssueSessionClaim(user.ID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to sign session claim")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, loginResponse{AccessToken: claim, TokenType: "bearer"})
}

func (s *Server) getMyProfile(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, middleware.UserFrom(r).User.Profile())
}

// changeMyProfile updates username, email or password. Every change requires
// the current password, even with a valid session.
func (s *Server) changeMyProfile(w http.ResponseWriter, r *http.Request) {
	var req changeProfileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	user := middleware.UserFrom(r).User
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		httputil.WriteErrorMessage(w, http.StatusForbidden, "wrong password")
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.NewPassword != nil {
		hash, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("failed to hash password")
			httputil.WriteInternalError(w, err)
			return
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user.Profile())
}

func (s *Server) deleteMyProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Remove(r.Context(), middleware.UserFrom(r).User); err != nil {
		httputil.WriteAppError(w, err)
		return
	}
	httputil.WriteDetail(w, "your profile has been successfully deleted")
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	raw, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid user id")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, user.Public())
}
