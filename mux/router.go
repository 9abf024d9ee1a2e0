package mux

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vitalvas/kestrel/validator"
)

// DefaultMaxBodyBytes is the request body limit of a new Router.
const DefaultMaxBodyBytes = 32 << 20

// ExceptionHandlerFunc may rewrite the response sent for a failed request.
// resp is the default error response, status its status code and trace the
// frames it reports.
type ExceptionHandlerFunc func(req *Request, resp Response, status int, err error, trace []Frame) Response

// Router registers routes to be matched and dispatches a handler.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.Get("/users/:id", func(req *mux.Request) (mux.Response, error) {
//	    return mux.OK(map[string]string{"id": req.Var("id")}), nil
//	})
//	http.ListenAndServe(":8080", r)
//
// Routes and middleware are registered before serving. Freeze makes the
// table read-only; later registrations fail with ErrRouterFrozen.
type Router struct {
	// NotFoundHandler is called when no route matches. If nil, a 404 error
	// response is sent.
	NotFoundHandler HandlerFunc

	// MethodNotAllowedHandler is called when a route matches the path but
	// not the method. If nil, a 405 error response is sent. The Allow header
	// is set in both cases.
	MethodNotAllowedHandler HandlerFunc

	// ExceptionHandler rewrites error responses.
	ExceptionHandler ExceptionHandlerFunc

	// Logger receives one record per failed request. If nil, slog.Default
	// is used.
	Logger *slog.Logger

	// Validator is used by Request.Validate.
	Validator *validator.Validator

	// TempDir is where uploaded files are saved by body.File.Save.
	TempDir string

	// MaxBodyBytes caps the request body. Zero or less disables the check.
	MaxBodyBytes int64

	routes   map[string][]*Route
	order    []*Route
	wrappers []WrapperFunc
	before   []HandlerFunc
	after    []HandlerFunc

	// handlerCache caches the wrapped chain per route to avoid
	// re-wrapping on every request.
	handlerCache sync.Map // map[*Route]HandlerFunc

	frozen atomic.Bool
}

// NewRouter returns a new router instance.
func NewRouter() *Router {
	return &Router{
		routes:       make(map[string][]*Route),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handle registers h for method and pattern. It fails with a
// *DuplicateRouteError when the method already has a route matching the
// same paths, which is the case for patterns differing only in variable
// names.
func (r *Router) Handle(method, pattern string, h HandlerFunc, opts ...RouteOption) (*Route, error) {
	if r.frozen.Load() {
		return nil, fmt.Errorf("%w: %s %s", ErrRouterFrozen, method, pattern)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil, fmt.Errorf("%w: empty method for %s", ErrInvalidMethod, pattern)
	}

	p, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}

	if r.routes == nil {
		r.routes = make(map[string][]*Route)
	}

	routes := r.routes[method]
	shape := p.shape()
	for _, existing := range routes {
		if existing.pattern.shape() == shape {
			return nil, &DuplicateRouteError{Method: method, Pattern: p.raw, Existing: existing.pattern.raw}
		}
	}

	route := &Route{method: method, pattern: p, handler: h}
	for _, opt := range opts {
		opt(route)
	}

	// Keep routes ordered by specificity; equal ones stay in registration
	// order.
	idx := len(routes)
	for i, existing := range routes {
		if comparePatterns(p, existing.pattern) < 0 {
			idx = i
			break
		}
	}
	r.routes[method] = slices.Insert(routes, idx, route)
	r.order = append(r.order, route)

	return route, nil
}

func (r *Router) mustHandle(method, pattern string, h HandlerFunc, opts []RouteOption) *Route {
	route, err := r.Handle(method, pattern, h, opts...)
	if err != nil {
		panic(err)
	}
	return route
}

// Get registers a GET route. It panics on registration errors.
func (r *Router) Get(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("GET", pattern, h, opts)
}

// Post registers a POST route. It panics on registration errors.
func (r *Router) Post(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("POST", pattern, h, opts)
}

// Put registers a PUT route. It panics on registration errors.
func (r *Router) Put(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("PUT", pattern, h, opts)
}

// Patch registers a PATCH route. It panics on registration errors.
func (r *Router) Patch(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("PATCH", pattern, h, opts)
}

// Delete registers a DELETE route. It panics on registration errors.
func (r *Router) Delete(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("DELETE", pattern, h, opts)
}

// Options registers an OPTIONS route. It panics on registration errors.
func (r *Router) Options(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("OPTIONS", pattern, h, opts)
}

// Head registers a HEAD route. It panics on registration errors.
func (r *Router) Head(pattern string, h HandlerFunc, opts ...RouteOption) *Route {
	return r.mustHandle("HEAD", pattern, h, opts)
}

// Group registers the routes added by fn under prefix. fn receives an empty
// router; its routes, wrappers and before/after handlers are merged with
// opts applied first. It panics on registration errors.
//
//	r.Group("/api", func(api *mux.Router) {
//	    api.Get("/users", listUsers)
//	}, mux.WithWrappers(auth))
func (r *Router) Group(prefix string, fn func(*Router), opts ...RouteOption) {
	sub := NewRouter()
	fn(sub)
	if err := r.Merge(prefix, sub, opts...); err != nil {
		panic(err)
	}
}

// Merge registers every route of sub under prefix. Wrappers and before
// handlers run outside in: opts, then the middleware registered on sub, then
// the route's own. After handlers run in the reverse layering: the route's
// own, then sub's, then those from opts. It stops at the first registration
// error.
func (r *Router) Merge(prefix string, sub *Router, opts ...RouteOption) error {
	group := &Route{}
	for _, opt := range opts {
		opt(group)
	}

	for _, src := range sub.order {
		name := src.name
		if name == "" {
			name = group.name
		}

		merged := []RouteOption{
			WithWrappers(concat(group.wrappers, sub.wrappers, src.wrappers)...),
			WithBefore(concat(group.before, sub.before, src.before)...),
			WithAfter(concat(src.after, sub.after, group.after)...),
		}
		if name != "" {
			merged = append(merged, WithName(name))
		}

		if _, err := r.Handle(src.method, joinPath(prefix, src.pattern.raw), src.handler, merged...); err != nil {
			return err
		}
	}
	return nil
}

// Wrap adds wrappers applied to every request, outside the route wrappers.
// Unmatched requests pass through them too.
func (r *Router) Wrap(wrappers ...WrapperFunc) {
	r.mustBeOpen()
	r.wrappers = append(r.wrappers, wrappers...)
	r.handlerCache.Clear()
}

// Before adds handlers running before the route's own before handlers.
func (r *Router) Before(handlers ...HandlerFunc) {
	r.mustBeOpen()
	r.before = append(r.before, handlers...)
	r.handlerCache.Clear()
}

// After adds handlers running after the route's own after handlers.
func (r *Router) After(handlers ...HandlerFunc) {
	r.mustBeOpen()
	r.after = append(r.after, handlers...)
	r.handlerCache.Clear()
}

func (r *Router) mustBeOpen() {
	if r.frozen.Load() {
		panic(ErrRouterFrozen)
	}
}

// Freeze makes the route table read-only.
func (r *Router) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze was called.
func (r *Router) Frozen() bool {
	return r.frozen.Load()
}

// Match returns the route registered for method that matches path, and the
// path variables. Literal segments win over constrained variables, which
// win over plain variables. HEAD requests fall back to GET routes.
func (r *Router) Match(method, path string) (*Route, map[string]string, bool) {
	method = strings.ToUpper(method)
	if route, vars, ok := r.matchMethod(method, path); ok {
		return route, vars, true
	}
	if method == http.MethodHead {
		return r.matchMethod(http.MethodGet, path)
	}
	return nil, nil, false
}

func (r *Router) matchMethod(method, path string) (*Route, map[string]string, bool) {
	for _, route := range r.routes[method] {
		if vars, ok := route.pattern.match(path); ok {
			return route, vars, true
		}
	}
	return nil, nil, false
}

// AllowedMethods returns the sorted methods having a route that matches
// path. HEAD is listed whenever GET is.
func (r *Router) AllowedMethods(path string) []string {
	var allowed []string
	for method, routes := range r.routes {
		for _, route := range routes {
			if _, ok := route.pattern.match(path); ok {
				allowed = append(allowed, method)
				break
			}
		}
	}
	if slices.Contains(allowed, http.MethodGet) && !slices.Contains(allowed, http.MethodHead) {
		allowed = append(allowed, http.MethodHead)
	}
	slices.Sort(allowed)
	return allowed
}

// NamedRoute returns the route registered with name, or nil.
func (r *Router) NamedRoute(name string) *Route {
	for _, route := range r.order {
		if route.name == name {
			return route
		}
	}
	return nil
}

// WalkFunc is called for each route visited by Walk.
type WalkFunc func(route *Route) error

// Walk calls fn for every route in registration order and stops at the
// first error.
func (r *Router) Walk(fn WalkFunc) error {
	for _, route := range r.order {
		if err := fn(route); err != nil {
			return err
		}
	}
	return nil
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	return slices.Clone(r.order)
}

type unmatchedKey struct{}

// handlerFor returns the wrapped chain of route, or of unmatched requests
// when route is nil.
func (r *Router) handlerFor(route *Route) HandlerFunc {
	var key any = route
	if route == nil {
		key = unmatchedKey{}
	}

	if cached, ok := r.handlerCache.Load(key); ok {
		return cached.(HandlerFunc)
	}

	var h HandlerFunc
	if route == nil {
		h = applyWrappers(r.unmatched, r.wrappers)
	} else {
		h = applyWrappers(
			chain(concat(r.before, route.before, []HandlerFunc{route.handler}, route.after, r.after)...),
			concat(r.wrappers, route.wrappers),
		)
	}

	actual, _ := r.handlerCache.LoadOrStore(key, h)
	return actual.(HandlerFunc)
}

// unmatched answers requests no route matched.
func (r *Router) unmatched(req *Request) (Response, error) {
	if allowed := r.AllowedMethods(req.Path); len(allowed) > 0 {
		if r.MethodNotAllowedHandler != nil {
			resp, err := r.MethodNotAllowedHandler(req)
			return resp.WithHeader("Allow", strings.Join(allowed, ", ")), err
		}
		return Response{}, &RoutingError{Method: req.Method, Path: req.Path, Allowed: allowed}
	}

	if r.NotFoundHandler != nil {
		return r.NotFoundHandler(req)
	}
	return Response{}, &RoutingError{Method: req.Method, Path: req.Path}
}

func (r *Router) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
