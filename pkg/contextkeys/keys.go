// Package contextkeys provides centralized context key definitions
//
// Request-scoped values shared between middleware and handlers are keyed
// here so key usage stays discoverable and collision-free. Logger and
// request-ID plumbing lives in pkg/observability.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

// ActorKey contains the authenticated tokens.Actor.
// Set by: middleware.Authenticator
// Required by: all protected API endpoints
const ActorKey Key = "actor"

// WithActor adds the authenticated actor to the context.
func WithActor(ctx context.Context, actor interface{}) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// Actor retrieves the authenticated actor from the context, or nil.
func Actor(ctx context.Context) interface{} {
	return ctx.Value(ActorKey)
}
