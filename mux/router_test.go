package mux

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) HandlerFunc {
	return func(_ *Request) (Response, error) {
		return Text(http.StatusOK, body), nil
	}
}

func TestRouterHandle(t *testing.T) {
	t.Run("registers route", func(t *testing.T) {
		r := NewRouter()
		route, err := r.Handle("get", "/users/:id", okHandler("x"), WithName("user"))
		require.NoError(t, err)

		assert.Equal(t, "GET", route.Method())
		assert.Equal(t, "/users/:id", route.Pattern())
		assert.Equal(t, "user", route.Name())
		assert.Equal(t, []string{"id"}, route.VarNames())
		assert.Same(t, route, r.NamedRoute("user"))
		assert.Nil(t, r.NamedRoute("missing"))
	})

	t.Run("duplicate pattern for same method fails", func(t *testing.T) {
		r := NewRouter()
		_, err := r.Handle("GET", "/users/:id", okHandler("a"))
		require.NoError(t, err)

		_, err = r.Handle("GET", "/users/:id", okHandler("b"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateRoute)

		var dup *DuplicateRouteError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "GET", dup.Method)
		assert.Equal(t, "/users/:id", dup.Pattern)
	})

	t.Run("same shape with other variable name is a duplicate", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))

		_, err := r.Handle("GET", "/users/:name/", okHandler("b"))
		assert.ErrorIs(t, err, ErrDuplicateRoute)
		assert.Contains(t, err.Error(), "conflicts with /users/:id")
	})

	t.Run("same pattern for another method succeeds", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))
		_, err := r.Handle("DELETE", "/users/:id", okHandler("b"))
		assert.NoError(t, err)
	})

	t.Run("constrained and plain variables coexist", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))
		_, err := r.Handle("GET", "/users/:id:int", okHandler("b"))
		assert.NoError(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		r := NewRouter()

		_, err := r.Handle("GET", "/a", nil)
		assert.ErrorIs(t, err, ErrNilHandler)

		_, err = r.Handle(" ", "/a", okHandler("a"))
		assert.ErrorIs(t, err, ErrInvalidMethod)

		_, err = r.Handle("GET", "/a/:", okHandler("a"))
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("helpers panic on error", func(t *testing.T) {
		r := NewRouter()
		r.Post("/a", okHandler("a"))
		assert.Panics(t, func() { r.Post("/a", okHandler("b")) })
	})

	t.Run("frozen router rejects registration", func(t *testing.T) {
		r := NewRouter()
		r.Freeze()
		assert.True(t, r.Frozen())

		_, err := r.Handle("GET", "/a", okHandler("a"))
		assert.ErrorIs(t, err, ErrRouterFrozen)
		assert.Panics(t, func() { r.Wrap(func(_ *Request, next NextFunc) (Response, error) { return next() }) })
	})
}

func TestRouterMatch(t *testing.T) {
	t.Run("extracts variables", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))

		route, vars, ok := r.Match("GET", "/users/42")
		require.True(t, ok)
		assert.Equal(t, "/users/:id", route.Pattern())
		assert.Equal(t, map[string]string{"id": "42"}, vars)
	})

	t.Run("method must match", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))

		_, _, ok := r.Match("POST", "/users/42")
		assert.False(t, ok)
	})

	t.Run("literal wins regardless of registration order", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("var"))
		r.Get("/users/:id:int", okHandler("int"))
		r.Get("/users/new", okHandler("new"))

		route, _, ok := r.Match("GET", "/users/new")
		require.True(t, ok)
		assert.Equal(t, "/users/new", route.Pattern())

		route, _, ok = r.Match("GET", "/users/7")
		require.True(t, ok)
		assert.Equal(t, "/users/:id:int", route.Pattern())

		route, vars, ok := r.Match("GET", "/users/sam")
		require.True(t, ok)
		assert.Equal(t, "/users/:id", route.Pattern())
		assert.Equal(t, "sam", vars["id"])
	})

	t.Run("first differing segment decides", func(t *testing.T) {
		r := NewRouter()
		r.Get("/:kind/list", okHandler("a"))
		r.Get("/users/:id", okHandler("b"))

		route, _, ok := r.Match("GET", "/users/list")
		require.True(t, ok)
		assert.Equal(t, "/users/:id", route.Pattern())
	})

	t.Run("allowed methods", func(t *testing.T) {
		r := NewRouter()
		r.Get("/users/:id", okHandler("a"))
		r.Delete("/users/:id", okHandler("b"))
		r.Put("/users/new", okHandler("c"))

		assert.Equal(t, []string{"DELETE", "GET", "HEAD"}, r.AllowedMethods("/users/42"))
		assert.Equal(t, []string{"DELETE", "GET", "HEAD", "PUT"}, r.AllowedMethods("/users/new"))
		assert.Empty(t, r.AllowedMethods("/teams"))
	})
}

func TestRouterGroup(t *testing.T) {
	t.Run("prefixes patterns with one slash at the seam", func(t *testing.T) {
		r := NewRouter()
		r.Group("/api/", func(api *Router) {
			api.Get("/users", okHandler("list"))
			api.Get("users/:id", okHandler("show"))
			api.Get("/", okHandler("index"))
		})

		var patterns []string
		require.NoError(t, r.Walk(func(route *Route) error {
			patterns = append(patterns, route.Method()+" "+route.Pattern())
			return nil
		}))
		assert.Equal(t, []string{"GET /api/users", "GET /api/users/:id", "GET /api"}, patterns)
	})

	t.Run("nested groups", func(t *testing.T) {
		r := NewRouter()
		r.Group("/api", func(api *Router) {
			api.Group("/v1", func(v1 *Router) {
				v1.Get("/ping", okHandler("pong"))
			})
		})

		_, _, ok := r.Match("GET", "/api/v1/ping")
		assert.True(t, ok)
	})

	t.Run("group options come first", func(t *testing.T) {
		r := NewRouter()
		noop := func(_ *Request, next NextFunc) (Response, error) { return next() }
		next := func(_ *Request) (Response, error) { return Next(), nil }

		r.Group("/api", func(api *Router) {
			api.Wrap(noop)
			api.Before(next)
			api.Get("/users", okHandler("list"), WithWrappers(noop), WithName("users"))
		}, WithWrappers(noop), WithBefore(next))

		route := r.NamedRoute("users")
		require.NotNil(t, route)
		info := route.Info()
		assert.Equal(t, 3, info.Wrappers)
		assert.Equal(t, 2, info.Before)
		assert.Equal(t, "/api/users", info.Pattern)
	})

	t.Run("group layers run in nesting order", func(t *testing.T) {
		var order []string
		step := func(name string) HandlerFunc {
			return func(_ *Request) (Response, error) {
				order = append(order, name)
				return Next(), nil
			}
		}

		r := NewRouter()
		r.Group("/g", func(g *Router) {
			g.Before(step("sub-before"))
			g.After(step("sub-after"))
			g.Get("/x", step("handler"),
				WithBefore(step("route-before")),
				WithAfter(step("route-after")),
			)
		}, WithBefore(step("group-before")), WithAfter(step("group-after"), func(_ *Request) (Response, error) {
			order = append(order, "final")
			return Text(http.StatusOK, "done"), nil
		}))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/g/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{
			"group-before", "sub-before", "route-before",
			"handler",
			"route-after", "sub-after", "group-after", "final",
		}, order)
	})

	t.Run("duplicate inside group panics", func(t *testing.T) {
		r := NewRouter()
		r.Get("/api/users", okHandler("a"))

		assert.Panics(t, func() {
			r.Group("/api", func(api *Router) {
				api.Get("/users", okHandler("b"))
			})
		})
	})

	t.Run("merge returns the error", func(t *testing.T) {
		r := NewRouter()
		r.Get("/api/users", okHandler("a"))

		sub := NewRouter()
		sub.Get("/users", okHandler("b"))
		assert.ErrorIs(t, r.Merge("/api", sub), ErrDuplicateRoute)
	})
}

func TestRouterWalk(t *testing.T) {
	r := NewRouter()
	r.Get("/a", okHandler("a"))
	r.Get("/b", okHandler("b"))

	stop := errors.New("stop")
	var seen int
	err := r.Walk(func(_ *Route) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
	assert.Len(t, r.Routes(), 2)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		prefix, pattern, want string
	}{
		{"", "/a", "/a"},
		{"/", "a", "/a"},
		{"/api", "/", "/api"},
		{"/api/", "/users", "/api/users"},
		{"api", "users/", "/api/users"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"+"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPath(tt.prefix, tt.pattern))
		})
	}
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "/", cleanPath(""))
	assert.Equal(t, "/a/c", cleanPath("/a/b/../c"))
	assert.Equal(t, "/a/", cleanPath("a/./"))
}
