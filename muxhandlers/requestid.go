package muxhandlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vitalvas/kestrel/logger"
	"github.com/vitalvas/kestrel/mux"
)

type requestIDKey struct{}

// RequestIDFromContext returns the request ID stored in the context by
// RequestIDWrapper. Returns an empty string if no ID is present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// RequestIDLogExtractor adds the request ID to log records written with a
// request context. Register it with logger.WithContextExtractors.
func RequestIDLogExtractor(ctx context.Context) (slog.Attr, bool) {
	id := RequestIDFromContext(ctx)
	return logger.RequestID(id), id != ""
}

// RequestIDConfig configures the Request ID wrapper behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc is an optional callback that returns a new unique ID.
	// Defaults to GenerateUUIDv4.
	GenerateFunc func(req *mux.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestIDWrapper returns a wrapper that generates or propagates a request
// ID. The ID is stored in the request headers, the request context and
// ContextData under "request_id", and echoed in the response header,
// error responses included.
func RequestIDWrapper(cfg RequestIDConfig) mux.WrapperFunc {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		id := ""
		if trustIncoming {
			id = req.Header(headerName)
		}

		if id == "" {
			id = generate(req)
		}

		if id == "" {
			return next()
		}

		req.Headers.Set(headerName, id)
		req.Set("request_id", id)
		req.WithContext(context.WithValue(req.Context(), requestIDKey{}, id))

		resp, err := next()
		if err != nil {
			return resp, mux.WithErrorHeaders(err, http.Header{headerName: {id}})
		}
		return resp.WithHeader(headerName, id), nil
	}
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *mux.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// Reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *mux.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
