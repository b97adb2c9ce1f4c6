// Package httputil provides HTTP helpers for standardized request/response
// handling across the registry's API.
//
// # Response Helpers
//
// Every error body has the shape {"detail": "..."}. Taxonomy errors map to
// their fixed status codes:
//
//	httputil.WriteAppError(w, err) // errs.KindNotFound -> 404, etc.
//	httputil.WriteSuccess(w, pkg)
//	httputil.WriteCreated(w, token)
//
// # Request Parsing
//
//	var req CreatePackageRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // error response already written
//	}
//	name, ok := httputil.ParsePathStringOrError(w, r, "name")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//		httputil.MaxBytesMiddleware(64<<20),
//	)
package httputil
