package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/kestrel/app"
	"github.com/vitalvas/kestrel/logger"
)

func newDemoServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.TempDir = t.TempDir()

	a, err := buildApp(cfg, logger.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDemoUsers(t *testing.T) {
	srv := newDemoServer(t)

	t.Run("create and fetch", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/users", `{"email":"ann@example.com","name":"Ann","age":30,"tags":["go","ops"]}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

		var created map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, "Ann", created["name"])

		get, err := http.Get(srv.URL + resp.Header.Get("Location"))
		require.NoError(t, err)
		defer get.Body.Close()
		assert.Equal(t, http.StatusOK, get.StatusCode)
	})

	t.Run("validation errors", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/v1/users", `{"email":"nope","name":" ","tags":["x"]}`)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var out struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, map[string]string{
			"email":  "Invalid email format",
			"name":   "This field is required",
			"tags.0": "Must be at least 2 characters long",
		}, out.Errors)
	})

	t.Run("form bodies are refused", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/users", "application/x-www-form-urlencoded", strings.NewReader("email=a@b.co"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func TestDemoMetrics(t *testing.T) {
	srv := newDemoServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `kestrel_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestDemoChat(t *testing.T) {
	srv := newDemoServer(t)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/general"

	// Messages are broadcast to the sender too, so reading one's own
	// message proves the client has joined the room. Bob dials only after
	// Ann's round trip, so he never sees her "ready".
	var msg chatMessage
	ann, _, err := websocket.DefaultDialer.Dial(base+"?user=ann", nil)
	require.NoError(t, err)
	defer ann.Close()

	require.NoError(t, ann.WriteJSON(map[string]string{"text": "ready"}))
	require.NoError(t, ann.ReadJSON(&msg))
	assert.Equal(t, "ann", msg.User)

	bob, _, err := websocket.DefaultDialer.Dial(base+"?user=bob", nil)
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, bob.WriteJSON(map[string]string{"text": "ready"}))
	require.NoError(t, bob.ReadJSON(&msg))
	assert.Equal(t, chatMessage{Room: "general", User: "bob", Text: "ready", At: msg.At}, msg)
	require.NoError(t, ann.ReadJSON(&msg))
	assert.Equal(t, chatMessage{Room: "general", User: "bob", Text: "ready", At: msg.At}, msg)

	require.NoError(t, ann.WriteJSON(map[string]string{"text": "hello"}))
	require.NoError(t, bob.ReadJSON(&msg))
	assert.Equal(t, chatMessage{Room: "general", User: "ann", Text: "hello", At: msg.At}, msg)
}

func TestRoutesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"routes"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "pattern: /api/v1/users/:id")
	assert.Contains(t, out.String(), "/ws/rooms/:room")
	assert.Contains(t, out.String(), "/metrics")
}
