package muxhandlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vitalvas/kestrel/mux"
)

// ErrInvalidTimeout is returned when TimeoutConfig.Duration is not greater
// than zero.
var ErrInvalidTimeout = errors.New("timeout: duration must be greater than zero")

// TimeoutConfig configures the Timeout wrapper behaviour.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the rest of the chain.
	// Must be greater than zero.
	Duration time.Duration

	// Message is the error message of the timeout response.
	// Defaults to "Service Unavailable".
	Message string
}

// TimeoutWrapper returns a wrapper that races the rest of the chain against
// a timer. When the timer fires first it answers 503 and the request context
// is cancelled; the abandoned chain keeps running until it returns.
//
// It returns ErrInvalidTimeout if Duration is not greater than zero.
func TimeoutWrapper(cfg TimeoutConfig) (mux.WrapperFunc, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidTimeout
	}

	duration := cfg.Duration
	message := cfg.Message
	if message == "" {
		message = http.StatusText(http.StatusServiceUnavailable)
	}

	type result struct {
		resp mux.Response
		err  error
	}

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		ctx, cancel := context.WithTimeout(req.Context(), duration)
		defer cancel()
		req.WithContext(ctx)

		done := make(chan result, 1)
		go func() {
			resp, err := next()
			done <- result{resp: resp, err: err}
		}()

		select {
		case res := <-done:
			return res.resp, res.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return mux.Fail(http.StatusServiceUnavailable, message), nil
			}
			return mux.Response{}, ctx.Err()
		}
	}, nil
}
