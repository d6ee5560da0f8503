package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors surfaced back to the offending sender only.
var (
	ErrThinkTooShort = fmt.Errorf("think field must be at least %d characters", MinThinkChars)
	ErrEmptySpeech   = errors.New("speech field cannot be empty")
)

// SessionState is the lifecycle state of a conversation.
type SessionState string

const (
	SessionActive SessionState = "ACTIVE"
	SessionEnded  SessionState = "ENDED"
)

// EndReason explains why a session terminated. It is surfaced to the
// remaining participant as the partner_left reason code.
type EndReason string

const (
	EndReassigned   EndReason = "reassigned"
	EndDisconnected EndReason = "disconnected"
	EndInactive     EndReason = "inactive"
	EndForced       EndReason = "forced"
)

// SlotRecord binds one session slot to a participant and its hidden task.
type SlotRecord struct {
	ParticipantID string `json:"user_id"`
	Task          string `json:"task"`
}

// TranscriptMessage is the persisted form of a Message.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the durable transcript record handed to the Transcript
// Store. It is the external contract: everything downstream readers see.
type Conversation struct {
	SessionID    string              `json:"session_id"`
	Topic        string              `json:"topic"`
	Participants []SlotRecord        `json:"participants"`
	Messages     []TranscriptMessage `json:"messages"`
	StartedAt    time.Time           `json:"started_at"`
	EndedAt      *time.Time          `json:"ended_at,omitempty"`
}
