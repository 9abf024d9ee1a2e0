package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitalvas/kestrel/mux"
)

type chatMessage struct {
	Room string    `json:"room"`
	User string    `json:"user"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type chatClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *chatClient) send(msg chatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(msg)
}

// chatHub fans messages out to every client of a room.
type chatHub struct {
	mu    sync.Mutex
	rooms map[string]map[*chatClient]struct{}
}

func newChatHub() *chatHub {
	return &chatHub{rooms: make(map[string]map[*chatClient]struct{})}
}

func (h *chatHub) join(room string, c *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*chatClient]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *chatHub) leave(room string, c *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

func (h *chatHub) broadcast(msg chatMessage) {
	h.mu.Lock()
	clients := make([]*chatClient, 0, len(h.rooms[msg.Room]))
	for c := range h.rooms[msg.Room] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		// A failing client is dropped by its own read loop.
		_ = c.send(msg)
	}
}

func (h *chatHub) serve(conn *websocket.Conn, req *mux.Request) error {
	room := req.Var("room")
	name := req.Query.Get("user")
	if name == "" {
		name = "anonymous"
	}

	c := &chatClient{conn: conn}
	h.join(room, c)
	defer h.leave(room, c)

	for {
		var in struct {
			Text string `json:"text"`
		}
		if err := conn.ReadJSON(&in); err != nil {
			return err
		}

		h.broadcast(chatMessage{Room: room, User: name, Text: in.Text, At: time.Now().UTC()})
	}
}
