package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/kestrel/mux"
)

func TestServerWrapper(t *testing.T) {
	t.Run("explicit hostname", func(t *testing.T) {
		wrap, err := ServerWrapper(ServerConfig{Hostname: "node-1"})
		require.NoError(t, err)

		r := newTestRouter()
		r.Wrap(wrap)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.Equal(t, "node-1", w.Header().Get("X-Server-Hostname"))
	})

	t.Run("environment variables in order", func(t *testing.T) {
		t.Setenv("KESTREL_TEST_POD", "")
		t.Setenv("KESTREL_TEST_HOST", "pod-7")

		wrap, err := ServerWrapper(ServerConfig{HostnameEnv: []string{"KESTREL_TEST_POD", "KESTREL_TEST_HOST"}})
		require.NoError(t, err)

		r := newTestRouter()
		r.Wrap(wrap)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.Equal(t, "pod-7", w.Header().Get("X-Server-Hostname"))
	})

	t.Run("falls back to os hostname", func(t *testing.T) {
		want, err := os.Hostname()
		require.NoError(t, err)

		wrap, err := ServerWrapper(ServerConfig{})
		require.NoError(t, err)

		r := newTestRouter()
		r.Wrap(wrap)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.Equal(t, want, w.Header().Get("X-Server-Hostname"))
	})

	t.Run("error responses carry the hostname", func(t *testing.T) {
		wrap, err := ServerWrapper(ServerConfig{Hostname: "node-1"})
		require.NoError(t, err)

		r := newTestRouter()
		r.Wrap(wrap)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "node-1", w.Header().Get("X-Server-Hostname"))
	})

	t.Run("keeps handler headers", func(t *testing.T) {
		wrap, err := ServerWrapper(ServerConfig{Hostname: "node-1"})
		require.NoError(t, err)

		r := newTestRouter()
		r.Wrap(wrap)
		r.Get("/custom", func(_ *mux.Request) (mux.Response, error) {
			return mux.OK(nil).WithHeader("X-Custom", "1"), nil
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/custom", nil))
		assert.Equal(t, "1", w.Header().Get("X-Custom"))
		assert.Equal(t, "node-1", w.Header().Get("X-Server-Hostname"))
	})
}
