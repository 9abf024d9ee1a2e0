package mux

import (
	"encoding/json"
	"net/http"

	"github.com/vitalvas/kestrel/validator"
)

// Response is what handlers and wrappers return. A handler in a linear chain
// returns Next to let the following handler run.
type Response struct {
	// Data is encoded as JSON, except []byte and json.RawMessage which are
	// written as is. Nil writes no body.
	Data       any
	StatusCode int

	// Headers are set on the response unless HeaderFunc is set, in which
	// case HeaderFunc alone decides the headers.
	Headers    map[string]string
	HeaderFunc func(http.Header)

	// Next continues the chain. PassedData is merged into the request's
	// ContextData before the next handler runs.
	Next       bool
	PassedData map[string]any
}

// JSON returns a final response with the given status and data.
func JSON(status int, data any) Response {
	return Response{StatusCode: status, Data: data}
}

// OK returns a final 200 response.
func OK(data any) Response {
	return JSON(http.StatusOK, data)
}

// Text returns a plain text response.
func Text(status int, text string) Response {
	return Response{
		StatusCode: status,
		Data:       []byte(text),
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
	}
}

// Next returns a response asking the chain to continue.
func Next() Response {
	return Response{Next: true}
}

// Pass continues the chain and hands data to the following handlers.
func Pass(data map[string]any) Response {
	return Response{Next: true, PassedData: data}
}

// Fail returns an error response with the standard error body.
func Fail(status int, message string) Response {
	return JSON(status, map[string]any{
		"status":  false,
		"code":    status,
		"message": message,
	})
}

// Invalid returns a 422 response listing validation errors.
func Invalid(errs validator.Errors) Response {
	return JSON(http.StatusUnprocessableEntity, map[string]any{
		"status":  false,
		"code":    http.StatusUnprocessableEntity,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// WithHeader returns a copy of the response with a header added. When the
// response has a HeaderFunc the header is set after it runs.
func (r Response) WithHeader(key, value string) Response {
	if prev := r.HeaderFunc; prev != nil {
		r.HeaderFunc = func(h http.Header) {
			prev(h)
			h.Set(key, value)
		}
		return r
	}

	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[key] = value
	r.Headers = headers
	return r
}

// WithHeaders returns a copy of the response that also adds every value of
// extra. Multi-valued headers such as Vary keep all their values.
func (r Response) WithHeaders(extra http.Header) Response {
	if len(extra) == 0 {
		return r
	}

	prev, static := r.HeaderFunc, r.Headers
	r.HeaderFunc = func(h http.Header) {
		if prev != nil {
			prev(h)
		} else {
			for k, v := range static {
				h.Set(k, v)
			}
		}
		for k, values := range extra {
			for _, v := range values {
				h.Add(k, v)
			}
		}
	}
	return r
}

// Status returns StatusCode, or 200 when unset.
func (r Response) Status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

// encode renders Data and picks the default content type.
func (r Response) encode() ([]byte, string, error) {
	switch data := r.Data.(type) {
	case nil:
		return nil, "", nil
	case json.RawMessage:
		return data, "application/json", nil
	case []byte:
		if len(data) == 0 {
			return nil, "", nil
		}
		return data, http.DetectContentType(data), nil
	default:
		b, err := encodeJSON(data)
		if err != nil {
			return nil, "", err
		}
		return b, "application/json", nil
	}
}

func (r Response) send(w http.ResponseWriter, payload []byte, contentType string) error {
	h := w.Header()
	if r.HeaderFunc != nil {
		r.HeaderFunc(h)
	} else {
		for k, v := range r.Headers {
			h.Set(k, v)
		}
	}
	if contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}

	w.WriteHeader(r.Status())
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ResponseJSON encodes v as JSON and writes it to the response with the given
// status code. The Content-Type header is set to "application/json".
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func ResponseJSON(w http.ResponseWriter, code int, v any) {
	b, err := encodeJSON(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
