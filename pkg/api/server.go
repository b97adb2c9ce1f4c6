// Package api wires the HTTP surface of the package registry: accounts,
// packages, publication, downloads and token management.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/raccoonpkg/rack/pkg/auth"
	"github.com/raccoonpkg/rack/pkg/blob"
	"github.com/raccoonpkg/rack/pkg/httputil"
	"github.com/raccoonpkg/rack/pkg/middleware"
	"github.com/raccoonpkg/rack/pkg/observability"
	"github.com/raccoonpkg/rack/pkg/publish"
	"github.com/raccoonpkg/rack/pkg/registry"
	"github.com/raccoonpkg/rack/pkg/tokens"
	"github.com/raccoonpkg/rack/pkg/users"
)

// maxUploadSize bounds publish request bodies.
const maxUploadSize = 64 << 20

// Server is the API server
type Server struct {
	router *mux.Router
	logger *observability.Logger

	users       *users.Store
	credentials *auth.Service
	packages    *registry.Store
	tokens      *tokens.Service
	storage     blob.Gateway
	pipeline    *publish.Pipeline
	health      *observability.HealthChecker
}

// Deps carries everything the server needs; all fields are required.
type Deps struct {
	Logger      *observability.Logger
	Metrics     *observability.Metrics
	Users       *users.Store
	Credentials *auth.Service
	Packages    *registry.Store
	Tokens      *tokens.Service
	Storage     blob.Gateway
	Pipeline    *publish.Pipeline
	Health      *observability.HealthChecker
}

// NewServer creates the API server and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		logger:      deps.Logger,
		users:       deps.Users,
		credentials: deps.Credentials,
		packages:    deps.Packages,
		tokens:      deps.Tokens,
		storage:     deps.Storage,
		pipeline:    deps.Pipeline,
		health:      deps.Health,
	}

	authn := middleware.NewAuthenticator(deps.Credentials, deps.Tokens)
	s.setupRoutes(authn)

	s.router.Use(
		httputil.LoggingMiddleware(deps.Logger),
		httputil.RecoveryMiddleware(deps.Logger),
		deps.Metrics.HTTPMiddleware(routeTemplate),
	)

	return s
}

func (s *Server) setupRoutes(authn *middleware.Authenticator) {
	r := s.router

	// Liveness is part of the public surface as well as the ops port.
	r.HandleFunc("/health", s.health.Handler).Methods("GET")

	// Accounts. The /users/me routes are registered before /users/{id} so
	// "me" never parses as a user id.
	r.HandleFunc("/users", s.registerUser).Methods("POST")
	r.HandleFunc("/users/login", s.login).Methods("POST")
	r.Handle("/users/me", authn.RequireUser(http.HandlerFunc(s.getMyProfile))).Methods("GET")
	r.Handle("/users/me", authn.RequireUser(http.HandlerFunc(s.changeMyProfile))).Methods("PUT")
	r.Handle("/users/me", authn.RequireUser(http.HandlerFunc(s.deleteMyProfile))).Methods("DELETE")
	r.HandleFunc("/users/{id}", s.getUser).Methods("GET")

	// Packages.
	r.Handle("/packages", authn.RequireUser(http.HandlerFunc(s.createPackage))).Methods("POST")
	r.HandleFunc("/packages", s.searchPackages).Methods("GET")
	r.Handle("/packages/publish", authn.Require(http.HandlerFunc(s.publishVersion))).Methods("POST")
	r.HandleFunc("/packages/{name}", s.getPackage).Methods("GET")
	r.HandleFunc("/packages/{name}/{version}", s.getPackageVersion).Methods("GET")

	// Archive downloads. The path mirrors the blob layout but only resolves
	// through the registry; version may contain dashes, so the package part
	// greedily takes the last dash.
	r.HandleFunc("/files/versions/{package}-{version}.tar.gz", s.downloadFile).Methods("GET")

	// Token management is session-only; a token cannot mint tokens.
	r.Handle("/tokens", authn.RequireUser(http.HandlerFunc(s.listTokens))).Methods("GET")
	r.Handle("/tokens", authn.RequireUser(http.HandlerFunc(s.createToken))).Methods("POST")
	r.Handle("/tokens/{id}", authn.RequireUser(http.HandlerFunc(s.getToken))).Methods("GET")
	r.Handle("/tokens/{id}", authn.RequireUser(http.HandlerFunc(s.deleteToken))).Methods("DELETE")
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// routeTemplate labels metrics with the mux route template instead of the
// raw path, keeping label cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return "unmatched"
}
