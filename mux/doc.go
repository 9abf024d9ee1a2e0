// Package mux implements the request router and dispatcher of kestrel.
//
// Routes are registered per method with patterns made of "/"-separated
// segments. A segment starting with ":" binds a path variable; an optional
// constraint follows a second ":", either a macro or a regular expression:
//
//	r := mux.NewRouter()
//	r.Get("/users/:id", showUser)
//	r.Get("/files/:id:uuid", showFile)
//	r.Get("/posts/:year:[0-9]{4}/:slug", showPost)
//
// Matching is fixed-arity: a pattern matches only paths with the same number
// of segments. When several patterns of one method match a path, literal
// segments win over constrained variables, which win over plain variables,
// so "/users/new" is preferred to "/users/:id" whatever the registration
// order. Registering a pattern that matches the same paths as an existing
// one for the same method fails with a *DuplicateRouteError. As with
// net/http, a HEAD request without a HEAD route is served by the GET route
// and the response body is dropped.
//
// # Constraint macros
//
//	uuid, int, float, slug, alpha, alphanum, date, hex, domain
//
// # Dispatch
//
// For every request the router decodes the body (POST, PUT, PATCH and
// DELETE; see package body), matches the route and runs its chain:
//
//	global wrappers > route wrappers > before handlers > handler > after handlers
//
// Wrappers nest like an onion: the first registered is the outermost and
// sees the response of everything inside it. Before and after handlers run
// in a line: each returns either a final Response, which ends the chain, or
// Next (or Pass, which also hands data to ContextData of the following
// handlers). Global before handlers run ahead of the route's and global
// after handlers behind them.
//
// # Errors
//
// A handler error or panic becomes a JSON error response:
//
//	{"status": false, "code": 500, "message": "...", "file": "...", "line": 42,
//	 "trace": [{"function": "...", "file": "...", "line": 42}]}
//
// The trace is only included for 5xx statuses. Errors created with Errorf or
// WithStack report the place they were created at, panics the place they
// happened at. Errors implementing StatusCoder, such as *HTTPError, choose
// their status. Router.ExceptionHandler may rewrite any error response.
package mux
