package mux

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vitalvas/kestrel/body"
	"github.com/vitalvas/kestrel/validator"
)

// Request is the framework view of an incoming HTTP request. It is owned by
// the goroutine serving the request and shared by every wrapper and handler
// of its chain.
type Request struct {
	Method  string
	Path    string
	Vars    map[string]string
	Query   url.Values
	Headers http.Header

	// Fields holds the decoded body fields, Files the uploaded files.
	Fields map[string]any
	Files  map[string]*body.File

	// ContextData carries values from before-handlers and wrappers to the
	// handlers running after them.
	ContextData map[string]any

	raw       *http.Request
	route     *Route
	validator *validator.Validator
}

// NewRequest builds a Request from r without reading its body. Path
// variables are taken from the request context when r was routed.
func NewRequest(r *http.Request) *Request {
	req := &Request{
		Method:      r.Method,
		Path:        cleanPath(r.URL.Path),
		Query:       r.URL.Query(),
		Headers:     r.Header,
		Fields:      make(map[string]any),
		Files:       make(map[string]*body.File),
		ContextData: make(map[string]any),
		raw:         r,
	}
	if rc := routeContextOf(r.Context()); rc != nil {
		req.Vars = rc.vars
		req.route = rc.route
	}
	if req.Vars == nil {
		req.Vars = make(map[string]string)
	}
	return req
}

// Context returns the request context.
func (r *Request) Context() context.Context {
	return r.raw.Context()
}

// WithContext replaces the request context. Wrappers use it to attach
// deadlines and values for the handlers they call.
func (r *Request) WithContext(ctx context.Context) {
	r.raw = r.raw.WithContext(ctx)
}

// Raw returns the underlying *http.Request. Its body has already been
// consumed when the request was dispatched by a Router.
func (r *Request) Raw() *http.Request {
	return r.raw
}

// Route returns the matched route, or nil.
func (r *Request) Route() *Route {
	return r.route
}

// Var returns a path variable, or an empty string.
func (r *Request) Var(name string) string {
	return r.Vars[name]
}

// Header returns the first value of a request header.
func (r *Request) Header(name string) string {
	return r.Headers.Get(name)
}

// Set stores a value in ContextData.
func (r *Request) Set(key string, value any) {
	if r.ContextData == nil {
		r.ContextData = make(map[string]any)
	}
	r.ContextData[key] = value
}

// Get returns a value from ContextData.
func (r *Request) Get(key string) (any, bool) {
	v, ok := r.ContextData[key]
	return v, ok
}

// Validate checks the body fields against rules using the router's
// validator configuration.
func (r *Request) Validate(rules validator.Rules, opts ...validator.CallOption) (validator.Errors, error) {
	v := r.validator
	if v == nil {
		v = validator.New(validator.DefaultConfig())
	}
	return v.Validate(r.Fields, rules, opts...)
}

// merge copies passed data into ContextData.
func (r *Request) merge(data map[string]any) {
	for k, v := range data {
		r.Set(k, v)
	}
}
