// Package domain contains core domain types for the Chat Arena server.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ParticipantKind distinguishes human participants from AI stand-ins.
type ParticipantKind string

const (
	KindHuman ParticipantKind = "human"
	KindAI    ParticipantKind = "ai"
)

// Participant is one side of a conversation. A human participant is created
// when its WebSocket connects; an AI participant is created at pairing time
// when no human partner is available.
type Participant struct {
	ID   string
	Kind ParticipantKind
}

// NewHumanID generates an opaque id for a freshly connected human.
func NewHumanID() string {
	return "user_" + uuid.New().String()[:8]
}

// NewAIID generates an id for a spawned AI participant. The prefix keeps AI
// ids distinguishable from human ids in persisted transcripts.
func NewAIID() string {
	return "ai_" + uuid.New().String()[:8]
}

// NewSessionID generates a conversation session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// IsAIID reports whether an id belongs to an AI participant.
func IsAIID(id string) bool {
	return strings.HasPrefix(id, "ai_")
}
