package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/netutil"

	"github.com/vitalvas/kestrel/logger"
)

// Run listens on Config.Addr and serves until ctx is cancelled or the
// process receives SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}

	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down within
// Config.ShutdownTimeout. Open WebSocket connections receive a going-away
// close frame. ln is closed when Serve returns.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if a.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, a.cfg.MaxConns)
	}

	srv := &http.Server{
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.log.Handler(), slog.LevelWarn),
	}
	srv.RegisterOnShutdown(a.closeSockets)

	a.mu.Lock()
	if a.srv != nil {
		a.mu.Unlock()
		_ = ln.Close()
		return ErrAlreadyRunning
	}
	a.srv = srv
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.srv = nil
		a.mu.Unlock()
	}()

	attrs := []any{logger.Component("app"), slog.String("addr", ln.Addr().String())}
	a.log.InfoContext(ctx, "server started", attrs...)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrStart, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	<-errCh

	if err != nil {
		return errors.Join(ErrShutdown, err)
	}

	a.log.InfoContext(ctx, "server stopped", attrs...)
	return nil
}
