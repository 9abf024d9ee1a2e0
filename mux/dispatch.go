package mux

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitalvas/kestrel/body"
	"github.com/vitalvas/kestrel/logger"
)

// ErrorBody is the JSON body of an error response.
type ErrorBody struct {
	Status  bool    `json:"status"`
	Code    int     `json:"code"`
	Message string  `json:"message"`
	File    string  `json:"file,omitempty"`
	Line    int     `json:"line,omitempty"`
	Trace   []Frame `json:"trace,omitempty"`
}

// ServeHTTP dispatches the request: the body is decoded, the route matched,
// its wrappers and handlers run, and the response written. Errors and panics
// from any stage end in an error response; they never reach the server.
func (r *Router) ServeHTTP(w http.ResponseWriter, hr *http.Request) {
	temps := body.NewTempFiles(r.TempDir)
	defer func() {
		if err := temps.Cleanup(); err != nil {
			r.logger().WarnContext(hr.Context(), "temp file cleanup failed", logger.Component("mux"), logger.Error(err))
		}
	}()

	req := NewRequest(hr)
	req.validator = r.Validator

	if hasBody(hr.Method) {
		if err := r.decodeBody(req, hr, temps); err != nil {
			r.fail(w, req, err, callers(0))
			return
		}
	}

	route, vars, ok := r.Match(req.Method, req.Path)
	if ok {
		hr = setRouteContext(hr, route, vars)
		req.raw = hr
		req.route = route
		if vars != nil {
			req.Vars = vars
		}
	}

	resp, err := call(r.handlerFor(route), req)
	if err == nil && resp.Next {
		err = ErrNoResponse
	}
	if err != nil {
		r.fail(w, req, err, callers(0))
		return
	}

	r.send(w, req, resp)
}

func (r *Router) decodeBody(req *Request, hr *http.Request, temps *body.TempFiles) error {
	raw, err := body.ReadAll(hr.Body, r.MaxBodyBytes)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	parsed, err := body.Parse(hr.Header.Get("Content-Type"), raw, body.WithTempFiles(temps))
	if err != nil {
		return err
	}

	req.Fields = parsed.Fields
	req.Files = parsed.Files
	return nil
}

// send writes resp. An encoding failure turns into an error response since
// nothing has been written yet.
func (r *Router) send(w http.ResponseWriter, req *Request, resp Response) {
	payload, contentType, err := resp.encode()
	if err != nil {
		r.fail(w, req, err, callers(0))
		return
	}
	if req.Method == http.MethodHead {
		payload = nil
	}
	if err := resp.send(w, payload, contentType); err != nil {
		r.logger().DebugContext(req.Context(), "response write failed", logger.Component("mux"), logger.Error(err))
	}
}

// fail builds the error response for err, lets the exception handler
// rewrite it, logs the failure and writes the result.
func (r *Router) fail(w http.ResponseWriter, req *Request, err error, fallback []Frame) {
	status := StatusOf(err)

	errBody := ErrorBody{
		Status:  false,
		Code:    status,
		Message: errorMessage(status, err),
	}

	var trace []Frame
	if status >= http.StatusInternalServerError {
		trace = traceOf(err, fallback)
		if len(trace) > 0 {
			errBody.File, errBody.Line = trace[0].File, trace[0].Line
		}
		errBody.Trace = trace
	}

	resp := JSON(status, errBody)

	var re *RoutingError
	if errors.As(err, &re) && len(re.Allowed) > 0 {
		resp = resp.WithHeader("Allow", strings.Join(re.Allowed, ", "))
	}
	if h := errorHeaders(err); h != nil {
		resp = resp.WithHeaders(h)
	}

	if r.ExceptionHandler != nil {
		resp = r.callExceptionHandler(req, resp, status, err, trace)
	}

	r.logFailure(req.Context(), req, status, err, trace)

	payload, contentType, encErr := resp.encode()
	if encErr != nil {
		ResponseJSON(w, http.StatusInternalServerError, ErrorBody{
			Code:    http.StatusInternalServerError,
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}
	if req.Method == http.MethodHead {
		payload = nil
	}
	if werr := resp.send(w, payload, contentType); werr != nil {
		r.logger().DebugContext(req.Context(), "response write failed", logger.Component("mux"), logger.Error(werr))
	}
}

// callExceptionHandler keeps the default response when the hook panics.
func (r *Router) callExceptionHandler(req *Request, resp Response, status int, err error, trace []Frame) (out Response) {
	out = resp
	defer func() {
		if v := recover(); v != nil {
			r.logger().ErrorContext(req.Context(), "exception handler panicked",
				logger.Component("mux"), slog.Any("panic", v))
			out = resp
		}
	}()
	return r.ExceptionHandler(req, resp, status, err, trace)
}

func (r *Router) logFailure(ctx context.Context, req *Request, status int, err error, trace []Frame) {
	attrs := []any{
		logger.Component("mux"),
		logger.Status(status),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		logger.Error(err),
	}
	if route := req.Route(); route != nil {
		attrs = append(attrs, logger.Route(route.Method(), route.Pattern()))
	}

	if status >= http.StatusInternalServerError {
		if len(trace) > 0 {
			attrs = append(attrs, slog.String("at", trace[0].String()))
		}
		r.logger().ErrorContext(ctx, "request failed", attrs...)
		return
	}
	r.logger().WarnContext(ctx, "request rejected", attrs...)
}

// errorMessage prefers the message of an HTTPError over its wrapped chain.
func errorMessage(status int, err error) string {
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
