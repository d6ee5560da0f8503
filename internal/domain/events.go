package domain

// Client -> server event types carried over the WebSocket.
const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventReassign   = "reassign"
	EventDisconnect = "disconnect"
)

// Server -> client event types.
const (
	EventWaiting        = "waiting"
	EventPaired         = "paired"
	EventMessageSent    = "message_sent"
	EventPartnerMessage = "partner_message"
	EventPartnerLeft    = "partner_left"
	EventInactivityKick = "inactivity_kick"
	EventError          = "error"
)

// ClientEvent is the decoded form of every inbound WebSocket frame. Consent
// is collected before the socket opens, so join carries no payload.
type ClientEvent struct {
	Type   string `json:"type"`
	Think  string `json:"think,omitempty"`
	Speech string `json:"speech,omitempty"`
}

// WaitingEvent reports the participant's 1-based rank in the wait queue.
type WaitingEvent struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
}

// PairedEvent tells a participant it has been bound into a session. Task is
// private to the receiving slot; the peer gets its own PairedEvent.
type PairedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Topic     string `json:"topic"`
	Task      string `json:"task"`
}

// MessageSentEvent acknowledges a validated message back to its author.
type MessageSentEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// PartnerMessageEvent carries the spoken text (never the private thought) to
// the peer.
type PartnerMessageEvent struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// PartnerLeftEvent notifies the remaining side that its partner is gone.
type PartnerLeftEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// InactivityKickEvent tells an idle participant it was removed.
type InactivityKickEvent struct {
	Type string `json:"type"`
}

// ErrorEvent reports a validation or state error to one participant.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewWaiting(position int) WaitingEvent {
	return WaitingEvent{Type: EventWaiting, Position: position}
}

func NewPaired(sessionID, topic, task string) PairedEvent {
	return PairedEvent{Type: EventPaired, SessionID: sessionID, Topic: topic, Task: task}
}

func NewMessageSent(ts string) MessageSentEvent {
	return MessageSentEvent{Type: EventMessageSent, Timestamp: ts}
}

func NewPartnerMessage(content, ts string) PartnerMessageEvent {
	return PartnerMessageEvent{Type: EventPartnerMessage, Content: content, Timestamp: ts}
}

func NewPartnerLeft(reason EndReason) PartnerLeftEvent {
	return PartnerLeftEvent{Type: EventPartnerLeft, Reason: string(reason)}
}

func NewInactivityKick() InactivityKickEvent {
	return InactivityKickEvent{Type: EventInactivityKick}
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}
