package mux

import (
	"sync"
)

// Route is a registered (method, pattern) pair with its handler and
// middleware. Routes are created by Router.Handle and are read-only
// afterwards.
type Route struct {
	method  string
	pattern *pattern
	handler HandlerFunc
	name    string

	wrappers []WrapperFunc
	before   []HandlerFunc
	after    []HandlerFunc

	// staticCtx is shared by every request to a route without variables.
	staticCtxOnce sync.Once
	staticCtx     *routeContext
}

// RouteOption configures a route at registration.
type RouteOption func(*Route)

// WithWrappers adds onion wrappers to the route. The first wrapper is the
// outermost one.
func WithWrappers(wrappers ...WrapperFunc) RouteOption {
	return func(r *Route) {
		r.wrappers = append(r.wrappers, wrappers...)
	}
}

// WithBefore adds handlers running before the route handler.
func WithBefore(handlers ...HandlerFunc) RouteOption {
	return func(r *Route) {
		r.before = append(r.before, handlers...)
	}
}

// WithAfter adds handlers running after the route handler. They run only
// when the handler returned Next.
func WithAfter(handlers ...HandlerFunc) RouteOption {
	return func(r *Route) {
		r.after = append(r.after, handlers...)
	}
}

// WithName names the route.
func WithName(name string) RouteOption {
	return func(r *Route) {
		r.name = name
	}
}

// Method returns the route method.
func (r *Route) Method() string {
	return r.method
}

// Pattern returns the normalized route pattern.
func (r *Route) Pattern() string {
	return r.pattern.raw
}

// Name returns the route name, if any.
func (r *Route) Name() string {
	return r.name
}

// Handler returns the route handler.
func (r *Route) Handler() HandlerFunc {
	return r.handler
}

// VarNames returns the names of the path variables in pattern order.
func (r *Route) VarNames() []string {
	names := make([]string, 0, r.pattern.vars)
	for _, seg := range r.pattern.segments {
		if seg.isVariable() {
			names = append(names, seg.name)
		}
	}
	return names
}

// Match matches path against the route pattern.
func (r *Route) Match(path string) (map[string]string, bool) {
	return r.pattern.match(path)
}

// RouteInfo describes a route for listings.
type RouteInfo struct {
	Method   string   `json:"method" yaml:"method"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Vars     []string `json:"vars,omitempty" yaml:"vars,omitempty"`
	Wrappers int      `json:"wrappers,omitempty" yaml:"wrappers,omitempty"`
	Before   int      `json:"before,omitempty" yaml:"before,omitempty"`
	After    int      `json:"after,omitempty" yaml:"after,omitempty"`
}

// Info returns a description of the route.
func (r *Route) Info() RouteInfo {
	return RouteInfo{
		Method:   r.method,
		Pattern:  r.pattern.raw,
		Name:     r.name,
		Vars:     r.VarNames(),
		Wrappers: len(r.wrappers),
		Before:   len(r.before),
		After:    len(r.after),
	}
}
