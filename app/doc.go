/*
Package app assembles a mux router, WebSocket routes and plain handlers
into a runnable HTTP service.

	cfg, err := app.LoadConfig()
	if err != nil {
	    log.Fatal(err)
	}

	a := app.New(cfg)
	a.Get("/users/:id", getUser)
	a.WebSocket("/rooms/:room", joinRoom)
	a.Mount("/metrics", promhttp.Handler())

	if err := a.Run(context.Background()); err != nil {
	    log.Fatal(err)
	}

Upgrade requests matching a socket route are upgraded with
github.com/gorilla/websocket; every other request goes to the first mount
whose prefix covers its path, or else to the router.

Run stops on SIGINT, SIGTERM or context cancellation. In-flight requests
get Config.ShutdownTimeout to finish and open sockets receive a going-away
close frame.
*/
package app
