// Package middleware provides HTTP middleware for the API server, chiefly
// the two-scheme authentication layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/raccoonpkg/rack/pkg/auth"
	"github.com/raccoonpkg/rack/pkg/contextkeys"
	"github.com/raccoonpkg/rack/pkg/httputil"
	"github.com/raccoonpkg/rack/pkg/tokens"
)

// Authenticator resolves the Authorization header into an actor. Two schemes
// are accepted, matched case-insensitively:
//
//	Authorization: Bearer <session JWT>   -> UserActor
//	Authorization: ApiKey <token secret>  -> TokenActor
type Authenticator struct {
	credentials *auth.Service
	tokens      *tokens.Service
}

// NewAuthenticator creates the authentication middleware.
func NewAuthenticator(credentials *auth.Service, tokenSvc *tokens.Service) *Authenticator {
	return &Authenticator{credentials: credentials, tokens: tokenSvc}
}

const authFailedDetail = "could not validate credentials"

// Require rejects unauthenticated requests with 401. On success the resolved
// actor is placed on the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := a.resolve(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httputil.WriteUnauthorized(w, authFailedDetail)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextkeys.WithActor(r.Context(), actor)))
	})
}

// RequireUser is Require narrowed to session-authenticated users. API tokens
// cannot manage accounts or other tokens.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFrom(r).(tokens.UserActor); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httputil.WriteUnauthorized(w, authFailedDetail)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (a *Authenticator) resolve(r *http.Request) (tokens.Actor, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, false
	}

	switch strings.ToLower(parts[0]) {
	case "bearer":
		user, err := a.credentials.ResolveSessionClaim(r.Context(), parts[1])
		if err != nil {
			return nil, false
		}
		return tokens.UserActor{User: user}, true
	case "apikey":
		token, err := a.tokens.Resolve(r.Context(), parts[1])
		if err != nil {
			return nil, false
		}
		return tokens.TokenActor{Token: token}, true
	default:
		return nil, false
	}
}

// ActorFrom returns the authenticated actor set by Require, or nil.
func ActorFrom(r *http.Request) tokens.Actor {
	actor, _ := contextkeys.Actor(r.Context()).(tokens.Actor)
	return actor
}

// UserFrom returns the session user set by RequireUser. It panics if the
// handler is reachable without RequireUser, which is a routing bug.
func UserFrom(r *http.Request) *tokens.UserActor {
	actor, ok := contextkeys.Actor(r.Context()).(tokens.UserActor)
	if !ok {
		panic("handler requires a session user but none is on the context")
	}
	return &actor
}
