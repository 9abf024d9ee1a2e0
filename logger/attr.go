package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil error gives an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Route records the matched route pattern under the key "route".
func Route(method, pattern string) slog.Attr {
	return slog.Group("route", slog.String("method", method), slog.String("pattern", pattern))
}

// Status records an HTTP status under the key "status".
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}
