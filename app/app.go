package app

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vitalvas/kestrel/logger"
	"github.com/vitalvas/kestrel/mux"
	"github.com/vitalvas/kestrel/validator"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used by the app and its router. The default
// follows Config.Env.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithUpgrader replaces the WebSocket upgrader. The default one accepts
// same-origin requests only.
func WithUpgrader(u websocket.Upgrader) Option {
	return func(a *App) { a.upgrader = u }
}

type mount struct {
	prefix  string
	handler http.Handler
}

// App ties a router, WebSocket routes and mounted handlers to an HTTP
// server. Register everything before calling Handler, Serve or Run; the
// route table is frozen from then on.
type App struct {
	cfg      Config
	log      *slog.Logger
	router   *mux.Router
	sockets  *mux.Router
	upgrader websocket.Upgrader

	socketHandlers map[*mux.Route]SocketHandler
	mounts         []mount

	mu    sync.Mutex
	srv   *http.Server
	conns map[*websocket.Conn]struct{}
}

// New returns an app configured by cfg.
func New(cfg Config, opts ...Option) *App {
	a := &App{
		cfg:            cfg,
		sockets:        mux.NewRouter(),
		socketHandlers: make(map[*mux.Route]SocketHandler),
		conns:          make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.New(logger.WithEnvironment(cfg.Env, cfg.Service))
	}

	r := mux.NewRouter()
	r.Logger = a.log
	r.Validator = validator.New(cfg.Validator)
	r.TempDir = cfg.TempDir
	r.MaxBodyBytes = cfg.MaxBodyBytes
	a.router = r

	return a
}

// Config returns the app configuration.
func (a *App) Config() Config { return a.cfg }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.log }

// Router returns the HTTP router, for the parts of its API the app does
// not mirror.
func (a *App) Router() *mux.Router { return a.router }

func (a *App) Get(path string, h mux.HandlerFunc, opts ...mux.RouteOption) *mux.Route {
	return a.router.Get(path, h, opts...)
}

func (a *App) Post(path string, h mux.HandlerFunc, opts ...mux.RouteOption) *mux.Route {
	return a.router.Post(path, h, opts...)
}

func (a *App) Put(path string, h mux.HandlerFunc, opts ...mux.RouteOption) *mux.Route {
	return a.router.Put(path, h, opts...)
}

func (a *App) Patch(path string, h mux.HandlerFunc, opts ...mux.RouteOption) *mux.Route {
	return a.router.Patch(path, h, opts...)
}

func (a *App) Delete(path string, h mux.HandlerFunc, opts ...mux.RouteOption) *mux.Route {
	return a.router.Delete(path, h, opts...)
}

// Handle registers h for an arbitrary method.
func (a *App) Handle(method, path string, h mux.HandlerFunc, opts ...mux.RouteOption) (*mux.Route, error) {
	return a.router.Handle(method, path, h, opts...)
}

// Group registers the routes added by fn under prefix.
func (a *App) Group(prefix string, fn func(*mux.Router), opts ...mux.RouteOption) {
	a.router.Group(prefix, fn, opts...)
}

// Wrap adds global wrappers. They also run for unmatched requests.
func (a *App) Wrap(wrappers ...mux.WrapperFunc) {
	a.router.Wrap(wrappers...)
}

// Before adds handlers running before every route handler.
func (a *App) Before(handlers ...mux.HandlerFunc) {
	a.router.Before(handlers...)
}

// After adds handlers running after every route handler that returned
// Next.
func (a *App) After(handlers ...mux.HandlerFunc) {
	a.router.After(handlers...)
}

// ExceptionHandler sets the hook that may rewrite error responses, for
// example to hide traces in production.
func (a *App) ExceptionHandler(fn mux.ExceptionHandlerFunc) {
	a.router.ExceptionHandler = fn
}

// Mount serves every request whose path is prefix or below it with h,
// bypassing the router. The path is passed on unchanged.
func (a *App) Mount(prefix string, h http.Handler) {
	if a.router.Frozen() {
		panic(mux.ErrRouterFrozen)
	}
	prefix = "/" + strings.Trim(prefix, "/")
	a.mounts = append(a.mounts, mount{prefix: prefix, handler: h})

	// Longest prefix first.
	slices.SortStableFunc(a.mounts, func(x, y mount) int {
		return len(y.prefix) - len(x.prefix)
	})
}

func (a *App) mountFor(path string) http.Handler {
	for _, m := range a.mounts {
		if m.prefix == "/" || path == m.prefix || strings.HasPrefix(path, m.prefix+"/") {
			return m.handler
		}
	}
	return nil
}

// Handler freezes the route tables and returns the app as an
// http.Handler.
func (a *App) Handler() http.Handler {
	a.router.Freeze()
	a.sockets.Freeze()
	return a
}

// ServeHTTP routes WebSocket upgrades to socket routes, then mounted
// handlers, then the router.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) && a.serveSocket(w, r) {
		return
	}
	if h := a.mountFor(r.URL.Path); h != nil {
		h.ServeHTTP(w, r)
		return
	}
	a.router.ServeHTTP(w, r)
}
