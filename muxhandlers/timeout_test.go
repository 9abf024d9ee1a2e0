package muxhandlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/kestrel/body"
	"github.com/vitalvas/kestrel/mux"
)

func TestTimeoutWrapper(t *testing.T) {
	t.Run("config validation", func(t *testing.T) {
		tests := []struct {
			name    string
			config  TimeoutConfig
			wantErr error
		}{
			{"zero duration", TimeoutConfig{Duration: 0}, ErrInvalidTimeout},
			{"negative duration", TimeoutConfig{Duration: -1 * time.Second}, ErrInvalidTimeout},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := TimeoutWrapper(tt.config)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	slow := func(req *mux.Request) (mux.Response, error) {
		select {
		case <-req.Context().Done():
			return mux.Response{}, req.Context().Err()
		case <-time.After(time.Second):
			return mux.OK("late"), nil
		}
	}

	t.Run("fast handler completes", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: time.Second})
		require.NoError(t, err)

		r := newTestRouter()
		r.Get("/fast", func(req *mux.Request) (mux.Response, error) {
			_, ok := req.Context().Deadline()
			assert.True(t, ok)
			return mux.OK("done"), nil
		}, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `"done"`, w.Body.String())
	})

	t.Run("slow handler times out", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: 20 * time.Millisecond})
		require.NoError(t, err)

		r := newTestRouter()
		r.Get("/slow", slow, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":false,"code":503,"message":"Service Unavailable"}`, w.Body.String())
	})

	t.Run("custom message", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: 20 * time.Millisecond, Message: "too slow"})
		require.NoError(t, err)

		r := newTestRouter()
		r.Get("/slow", slow, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"too slow"`)
	})

	t.Run("propagates handler errors", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: time.Second})
		require.NoError(t, err)

		r := newTestRouter()
		r.Get("/teapot", func(_ *mux.Request) (mux.Response, error) {
			return mux.Response{}, mux.NewHTTPError(http.StatusTeapot, "short and stout")
		}, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/teapot", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Contains(t, w.Body.String(), "short and stout")
	})

	t.Run("abandoned handler cannot save files after the response", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: 20 * time.Millisecond})
		require.NoError(t, err)

		dir := t.TempDir()
		release := make(chan struct{})
		saved := make(chan error, 1)

		r := newTestRouter()
		r.TempDir = dir
		r.Post("/upload", func(req *mux.Request) (mux.Response, error) {
			<-release
			_, err := req.Files["f"].Save()
			saved <- err
			return mux.OK("late"), nil
		}, mux.WithWrappers(wrap))

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("f", "a.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		w := serve(r, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		close(release)
		select {
		case err := <-saved:
			assert.ErrorIs(t, err, body.ErrTempFilesClosed)
		case <-time.After(time.Second):
			t.Fatal("handler did not finish")
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("recovers panics in the inner goroutine", func(t *testing.T) {
		wrap, err := TimeoutWrapper(TimeoutConfig{Duration: time.Second})
		require.NoError(t, err)

		r := newTestRouter()
		r.Get("/panic", func(_ *mux.Request) (mux.Response, error) {
			panic("boom")
		}, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "boom")
	})
}
