package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalvas/kestrel/app"
	"github.com/vitalvas/kestrel/logger"
	"github.com/vitalvas/kestrel/mux"
	"github.com/vitalvas/kestrel/muxhandlers"
)

const frontendOrigin = "http://localhost:3000"

// allowOrigin accepts handshakes without an Origin header, same-host ones
// and those from origin.
func allowOrigin(origin string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		got := r.Header.Get("Origin")
		return got == "" || got == origin || got == "http://"+r.Host || got == "https://"+r.Host
	}
}

// buildApp wires the demo service. A nil logger selects the one derived
// from cfg.Env.
func buildApp(cfg app.Config, log *slog.Logger) (*app.App, error) {
	if log == nil {
		log = logger.New(
			logger.WithEnvironment(cfg.Env, cfg.Service),
			logger.WithContextExtractors(muxhandlers.RequestIDLogExtractor),
		)
	}

	a := app.New(cfg, app.WithLogger(log), app.WithUpgrader(websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     allowOrigin(frontendOrigin),
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := muxhandlers.MetricsWrapper(muxhandlers.MetricsConfig{Registerer: reg})
	if err != nil {
		return nil, err
	}

	security, err := muxhandlers.SecurityHeadersWrapper(muxhandlers.SecurityHeadersConfig{})
	if err != nil {
		return nil, err
	}

	cors, err := muxhandlers.CORSWrapper(a.Router(), muxhandlers.CORSConfig{
		AllowedOrigins: []string{frontendOrigin},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders:  []string{"X-Request-ID"},
		MaxAge:         600,
	})
	if err != nil {
		return nil, err
	}

	timeout, err := muxhandlers.TimeoutWrapper(muxhandlers.TimeoutConfig{Duration: 10 * time.Second})
	if err != nil {
		return nil, err
	}

	jsonOnly, err := muxhandlers.ContentTypeCheckWrapper(muxhandlers.ContentTypeCheckConfig{
		AllowedTypes: []string{"application/json"},
	})
	if err != nil {
		return nil, err
	}

	server, err := muxhandlers.ServerWrapper(muxhandlers.ServerConfig{HostnameEnv: []string{"POD_NAME", "HOSTNAME"}})
	if err != nil {
		return nil, err
	}

	a.Wrap(
		muxhandlers.RequestIDWrapper(muxhandlers.RequestIDConfig{GenerateFunc: muxhandlers.GenerateUUIDv7}),
		muxhandlers.AccessLogWrapper(muxhandlers.AccessLogConfig{Logger: log, SkipPaths: []string{"/healthz"}}),
		metrics,
		security,
		server,
		cors,
	)

	a.Get("/healthz", func(_ *mux.Request) (mux.Response, error) {
		return mux.OK(map[string]any{"status": "ok"}), nil
	})

	users := newUserStore()
	a.Group("/api/v1", func(r *mux.Router) {
		r.Get("/users", users.list)
		r.Get("/users/:id", users.get)
		r.Post("/users", users.create, mux.WithWrappers(jsonOnly))
		r.Delete("/users/:id", users.delete)
	}, mux.WithWrappers(timeout))

	if user, pass := os.Getenv("DEMO_ADMIN_USER"), os.Getenv("DEMO_ADMIN_PASSWORD"); user != "" && pass != "" {
		auth, err := muxhandlers.BasicAuthWrapper(muxhandlers.BasicAuthConfig{
			Realm:       "kestrel-demo",
			Credentials: map[string]string{user: pass},
		})
		if err != nil {
			return nil, err
		}

		a.Group("/admin", func(r *mux.Router) {
			r.Get("/routes", func(_ *mux.Request) (mux.Response, error) {
				return mux.OK(a.Routes()), nil
			})
		}, mux.WithWrappers(auth))
	}

	hub := newChatHub()
	a.WebSocket("/ws/rooms/:room", hub.serve)

	a.Mount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	a.ExceptionHandler(func(_ *mux.Request, resp mux.Response, status int, _ error, _ []mux.Frame) mux.Response {
		if cfg.Env != logger.EnvProduction || status < http.StatusInternalServerError {
			return resp
		}
		return mux.Fail(status, http.StatusText(status))
	})

	return a, nil
}
