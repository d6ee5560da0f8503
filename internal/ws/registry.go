// Package ws exposes the chat service over WebSocket: one connection per
// participant, JSON events both ways.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// conn is the slice of *websocket.Conn the registry uses. Tests substitute
// in-memory fakes.
type conn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

type client struct {
	mu   sync.Mutex // serializes writes on one connection
	conn conn
}

// Registry maps participant ids to live connections and delivers server
// events to them. It satisfies the chat manager's Notifier contract:
// sends to unknown participants are dropped without error.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*client
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Register binds a participant id to its connection, replacing any
// previous binding.
func (r *Registry) Register(id string, c conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = &client{conn: c}
}

// Unregister drops the binding for id if it still points at c.
func (r *Registry) Unregister(id string, c conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cl, ok := r.clients[id]; ok && cl.conn == c {
		delete(r.clients, id)
	}
}

// Count reports the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Send marshals event and writes it to the participant's connection.
// Unknown participants and write failures are logged and dropped; the
// caller never blocks on a dead client.
func (r *Registry) Send(id string, event any) {
	r.mu.Lock()
	cl, ok := r.clients[id]
	r.mu.Unlock()
	if !ok {
		slog.Debug("event for unknown participant dropped", "participant_id", id)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshal event", "participant_id", id, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if err := cl.conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("websocket write failed", "participant_id", id, "error", err)
	}
}

// Close tears down the participant's connection server-side.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	cl, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := cl.conn.Close(websocket.StatusNormalClosure, "removed"); err != nil {
		slog.Debug("websocket close failed", "participant_id", id, "error", err)
	}
}
