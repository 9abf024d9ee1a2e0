package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitalvas/kestrel/logger"
	"github.com/vitalvas/kestrel/mux"
)

// SocketHandler serves an upgraded WebSocket connection. req carries the
// path variables, query and headers of the handshake request. The
// connection is closed when the handler returns.
type SocketHandler func(conn *websocket.Conn, req *mux.Request) error

// WebSocket registers h for upgrade requests matching path. Requests to the
// same path without an upgrade go through normal routing. It panics on
// registration errors.
func (a *App) WebSocket(path string, h SocketHandler) *mux.Route {
	if h == nil {
		panic(fmt.Errorf("%w: websocket %s", mux.ErrNilHandler, path))
	}

	route := a.sockets.Get(path, func(_ *mux.Request) (mux.Response, error) {
		return mux.Fail(http.StatusUpgradeRequired, http.StatusText(http.StatusUpgradeRequired)), nil
	})
	a.socketHandlers[route] = h
	return route
}

// serveSocket reports whether the request matched a socket route. The
// upgrader answers failed handshakes itself.
func (a *App) serveSocket(w http.ResponseWriter, r *http.Request) bool {
	route, vars, ok := a.sockets.Match(http.MethodGet, mux.NewRequest(r).Path)
	if !ok {
		return false
	}

	r = mux.SetRoute(r, route, vars)
	req := mux.NewRequest(r)

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.WarnContext(r.Context(), "websocket upgrade failed",
			logger.Component("app"), slog.String("path", req.Path), logger.Error(err))
		return true
	}

	a.track(conn)
	defer a.untrack(conn)

	a.runSocket(a.socketHandlers[route], conn, req)
	return true
}

func (a *App) runSocket(h SocketHandler, conn *websocket.Conn, req *mux.Request) {
	ctx := req.Context()
	attrs := []any{logger.Component("app"), logger.Route(req.Route().Method(), req.Route().Pattern())}

	defer func() {
		if v := recover(); v != nil {
			a.log.ErrorContext(ctx, "websocket handler panicked", append(attrs, slog.Any("panic", v))...)
		}
	}()

	if err := h(conn, req); err != nil && !websocket.IsCloseError(err,
		websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		a.log.WarnContext(ctx, "websocket handler failed", append(attrs, logger.Error(err))...)
	}
}

func (a *App) track(conn *websocket.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conns[conn] = struct{}{}
}

func (a *App) untrack(conn *websocket.Conn) {
	a.mu.Lock()
	delete(a.conns, conn)
	a.mu.Unlock()

	_ = conn.Close()
}

// closeSockets tells every open connection that the server is going away.
// Hijacked connections are not closed by http.Server.Shutdown.
func (a *App) closeSockets() {
	a.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(a.conns))
	for c := range a.conns {
		conns = append(conns, c)
	}
	a.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = c.Close()
	}
}
