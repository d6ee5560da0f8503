package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/s376930/Chat-Arena/internal/chat"
	"github.com/s376930/Chat-Arena/internal/domain"
)

// Handler upgrades HTTP requests to WebSocket chat connections.
type Handler struct {
	registry      *Registry
	mgr           *chat.Manager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates the WebSocket endpoint handler.
func NewHandler(registry *Registry, mgr *chat.Manager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		registry:      registry,
		mgr:           mgr,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade. Each connection
// gets a fresh anonymous participant id for its whole lifetime.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	participantID := domain.NewHumanID()
	slog.Info("participant connected", "participant_id", participantID, "ip", r.RemoteAddr)

	h.registry.Register(participantID, ws)
	defer func() {
		h.registry.Unregister(participantID, ws)
		h.mgr.Disconnect(participantID)
		slog.Info("participant disconnected", "participant_id", participantID)
	}()

	h.readLoop(r, ws, participantID)
}

func (h *Handler) readLoop(r *http.Request, ws *websocket.Conn, participantID string) {
	ctx := r.Context()
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "participant_id", participantID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "participant_id", participantID)
			}
			return
		}

		var event domain.ClientEvent
		if err := json.Unmarshal(message, &event); err != nil {
			h.registry.Send(participantID, domain.NewError("invalid message format"))
			continue
		}

		switch event.Type {
		case domain.EventJoin:
			h.mgr.Join(participantID)
		case domain.EventMessage:
			h.mgr.SubmitMessage(participantID, event.Think, event.Speech)
		case domain.EventReassign:
			h.mgr.Reassign(participantID)
		case domain.EventDisconnect:
			h.mgr.Disconnect(participantID)
			return
		default:
			h.registry.Send(participantID, domain.NewError("unknown event type: "+event.Type))
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
