package mux

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/kestrel/body"
)

var (
	// ErrInvalidPattern is returned when a route pattern cannot be parsed.
	ErrInvalidPattern = errors.New("mux: invalid route pattern")

	// ErrDuplicateRoute is matched by *DuplicateRouteError.
	ErrDuplicateRoute = errors.New("mux: duplicate route")

	// ErrNotFound is returned when no route matches the request path.
	ErrNotFound = errors.New("no matching route was found")

	// ErrMethodMismatch is returned when a route matches the path but not
	// the method.
	ErrMethodMismatch = errors.New("method is not allowed")

	// ErrNoResponse is returned when every handler of a route asked to
	// continue and none produced a final response.
	ErrNoResponse = errors.New("mux: no handler produced a response")

	// ErrRouterFrozen is returned when a route is registered after Freeze.
	ErrRouterFrozen = errors.New("mux: router is frozen")

	// ErrNilHandler is returned when a route is registered without a handler.
	ErrNilHandler = errors.New("mux: nil handler")

	// ErrInvalidMethod is returned when a route is registered without a
	// method.
	ErrInvalidMethod = errors.New("mux: invalid method")
)

// DuplicateRouteError reports a registration that collides with an existing
// route: same method and the same pattern once variable names are ignored.
type DuplicateRouteError struct {
	Method   string
	Pattern  string
	Existing string
}

func (e *DuplicateRouteError) Error() string {
	if e.Existing != "" && e.Existing != e.Pattern {
		return fmt.Sprintf("mux: duplicate route %s %s (conflicts with %s)", e.Method, e.Pattern, e.Existing)
	}
	return fmt.Sprintf("mux: duplicate route %s %s", e.Method, e.Pattern)
}

func (e *DuplicateRouteError) Unwrap() error {
	return ErrDuplicateRoute
}

// RoutingError is returned by dispatch when a request matches no route.
type RoutingError struct {
	Method string
	Path   string

	// Allowed lists the methods registered for Path. It is empty for
	// 404 and set for 405.
	Allowed []string
}

func (e *RoutingError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("method %s is not allowed for %s (allowed: %s)", e.Method, e.Path, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("route %s %s not found", e.Method, e.Path)
}

func (e *RoutingError) Unwrap() error {
	if len(e.Allowed) > 0 {
		return ErrMethodMismatch
	}
	return ErrNotFound
}

// StatusCode implements StatusCoder.
func (e *RoutingError) StatusCode() int {
	if len(e.Allowed) > 0 {
		return http.StatusMethodNotAllowed
	}
	return http.StatusNotFound
}

// StatusCoder is implemented by errors that choose their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error with an explicit HTTP status. Handlers return it to
// fail a request with a status other than 500.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

// NewHTTPError returns an HTTPError. An empty message falls back to the
// status text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode implements StatusCoder.
func (e *HTTPError) StatusCode() int {
	return e.Status
}

// StatusOf maps an error to the HTTP status used in the error response.
// Errors implementing StatusCoder choose their own; body decoding errors
// are client errors; everything else is 500.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}

	switch {
	case errors.Is(err, body.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, body.ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// headerError carries response headers attached to an error on its way
// out of a wrapper.
type headerError struct {
	err    error
	header http.Header
}

func (e *headerError) Error() string {
	return e.err.Error()
}

func (e *headerError) Unwrap() error {
	return e.err
}

// WithErrorHeaders attaches headers to err so the error response built for
// it carries them. Wrappers use it to keep their headers on failed
// requests. It returns nil when err is nil.
func WithErrorHeaders(err error, h http.Header) error {
	if err == nil || len(h) == 0 {
		return err
	}
	return &headerError{err: err, header: h}
}

// errorHeaders collects the headers attached along the chain of err. Outer
// wrappers override inner ones for the same key.
func errorHeaders(err error) http.Header {
	var layers []http.Header
	for e := err; e != nil; e = errors.Unwrap(e) {
		if he, ok := e.(*headerError); ok {
			layers = append(layers, he.header)
		}
	}
	if len(layers) == 0 {
		return nil
	}

	out := make(http.Header)
	for i := len(layers) - 1; i >= 0; i-- {
		for k, v := range layers[i] {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return out
}
