package mux

import (
	"context"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store both route and vars.
var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted variables.
type routeContext struct {
	route *Route
	vars  map[string]string
}

func routeContextOf(ctx context.Context) *routeContext {
	rc, _ := ctx.Value(ctxKey).(*routeContext)
	return rc
}

// Vars returns the route variables for the current request, if any.
func Vars(r *http.Request) map[string]string {
	if rc := routeContextOf(r.Context()); rc != nil {
		return rc.vars
	}
	return nil
}

// CurrentRoute returns the matched route for the current request, if any.
func CurrentRoute(r *http.Request) *Route {
	if rc := routeContextOf(r.Context()); rc != nil {
		return rc.route
	}
	return nil
}

// SetURLVars sets the URL variables for the given request, returning the
// modified request. This is intended for testing handlers built on
// NewRequest.
func SetURLVars(r *http.Request, vars map[string]string) *http.Request {
	var route *Route
	if rc := routeContextOf(r.Context()); rc != nil {
		route = rc.route
	}
	return setRouteContext(r, route, vars)
}

// SetRoute attaches a matched route and its variables to r, so that
// NewRequest, Vars and CurrentRoute see them. It serves requests routed
// outside Router.ServeHTTP, such as WebSocket upgrades.
func SetRoute(r *http.Request, route *Route, vars map[string]string) *http.Request {
	return setRouteContext(r, route, vars)
}

// setRouteContext stores both the matched route and vars in the request
// context using a single WithContext call. Routes without variables share
// one routeContext allocated on first dispatch.
func setRouteContext(r *http.Request, route *Route, vars map[string]string) *http.Request {
	var rc *routeContext
	if route != nil && len(vars) == 0 {
		route.staticCtxOnce.Do(func() {
			route.staticCtx = &routeContext{route: route}
		})
		rc = route.staticCtx
	} else {
		rc = &routeContext{route: route, vars: vars}
	}
	return r.WithContext(context.WithValue(r.Context(), ctxKey, rc))
}
