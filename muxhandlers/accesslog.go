package muxhandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalvas/kestrel/logger"
	"github.com/vitalvas/kestrel/mux"
)

// AccessLogConfig configures the Access Log wrapper behaviour.
type AccessLogConfig struct {
	// Logger receives the records. Defaults to slog.Default.
	Logger *slog.Logger

	// Level is the level of successful requests. Requests answered with a
	// 4xx status are logged at Warn and 5xx at Error. Defaults to Info.
	Level slog.Level

	// SkipPaths lists request paths that are never logged, such as health
	// checks.
	SkipPaths []string
}

// AccessLogWrapper returns a wrapper writing one log record per request
// with its method, path, route, status and duration. Failures are logged
// by the router as well; this record is the per-request summary.
func AccessLogWrapper(cfg AccessLogConfig) mux.WrapperFunc {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	level := cfg.Level

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		if _, ok := skip[req.Path]; ok {
			return next()
		}

		start := time.Now()
		resp, err := next()

		status := resp.Status()
		if err != nil {
			status = mux.StatusOf(err)
		}

		attrs := []slog.Attr{
			logger.Component("access"),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			logger.Status(status),
			logger.Duration(time.Since(start)),
		}
		if r := req.Route(); r != nil {
			attrs = append(attrs, logger.Route(r.Method(), r.Pattern()))
		}
		if addr := req.Raw().RemoteAddr; addr != "" {
			attrs = append(attrs, slog.String("remote_addr", addr))
		}

		log.LogAttrs(req.Context(), levelFor(status, level), "request", attrs...)

		return resp, err
	}
}

func levelFor(status int, base slog.Level) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return base
	}
}
