package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/kestrel/mux"
)

func TestContentTypeCheckWrapper(t *testing.T) {
	wrap, err := ContentTypeCheckWrapper(ContentTypeCheckConfig{
		AllowedTypes: []string{"Application/JSON"},
	})
	require.NoError(t, err)

	r := newTestRouter()
	r.Post("/items", okHandler, mux.WithWrappers(wrap))
	r.Get("/items", okHandler, mux.WithWrappers(wrap))

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantCode    int
	}{
		{"allowed type", http.MethodPost, "application/json", `{"a":1}`, http.StatusOK},
		{"allowed type with params", http.MethodPost, "application/json; charset=utf-8", `{"a":1}`, http.StatusOK},
		{"decodable but not allowed", http.MethodPost, "application/x-www-form-urlencoded", "a=1", http.StatusUnsupportedMediaType},
		{"missing type", http.MethodPost, "", "", http.StatusUnsupportedMediaType},
		{"unchecked method", http.MethodGet, "", "", http.StatusOK},
		{"unknown to the decoder", http.MethodPost, "application/xml", "<a/>", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/items", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := serve(r, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	t.Run("custom methods", func(t *testing.T) {
		wrap, err := ContentTypeCheckWrapper(ContentTypeCheckConfig{
			AllowedTypes: []string{"application/json"},
			Methods:      []string{http.MethodDelete},
		})
		require.NoError(t, err)

		r := newTestRouter()
		r.Delete("/items", okHandler, mux.WithWrappers(wrap))
		r.Post("/items", okHandler, mux.WithWrappers(wrap))

		w := serve(r, httptest.NewRequest(http.MethodDelete, "/items", nil))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

		w = serve(r, httptest.NewRequest(http.MethodPost, "/items", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requires allowed types", func(t *testing.T) {
		_, err := ContentTypeCheckWrapper(ContentTypeCheckConfig{})
		assert.ErrorIs(t, err, ErrNoAllowedTypes)
	})
}
