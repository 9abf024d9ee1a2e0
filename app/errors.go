package app

import "errors"

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("app: failed to start HTTP server")

	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("app: failed to shut down HTTP server gracefully")

	// ErrAlreadyRunning is returned by Serve and Run when the app is
	// already serving.
	ErrAlreadyRunning = errors.New("app: server already running")
)
