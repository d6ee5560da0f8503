package chat

import (
	"time"

	"github.com/s376930/Chat-Arena/internal/domain"
)

// participant is the manager's bookkeeping for one connected identity,
// human or AI.
type participant struct {
	id         string
	sessionID  string // empty while unpaired
	lastActive time.Time
}

// session is one live two-party conversation. All access is serialized by
// the manager's lock.
type session struct {
	id     string
	topic  string
	state  domain.SessionState
	slots  [2]domain.SlotRecord
	conv   *domain.Conversation
	lastTS time.Time
}

func newSession(topic string, slots [2]domain.SlotRecord, startedAt time.Time) *session {
	s := &session{
		id:    domain.NewSessionID(),
		topic: topic,
		state: domain.SessionActive,
		slots: slots,
	}
	s.conv = &domain.Conversation{
		SessionID:    s.id,
		Topic:        topic,
		Participants: s.slots[:],
		StartedAt:    startedAt,
	}
	return s
}

// partnerOf returns the other slot's participant id, or "" if id is not in
// this session.
func (s *session) partnerOf(id string) string {
	switch id {
	case s.slots[0].ParticipantID:
		return s.slots[1].ParticipantID
	case s.slots[1].ParticipantID:
		return s.slots[0].ParticipantID
	default:
		return ""
	}
}

// taskOf returns the hidden task assigned to id's slot.
func (s *session) taskOf(id string) string {
	for _, slot := range s.slots {
		if slot.ParticipantID == id {
			return slot.Task
		}
	}
	return ""
}

// stamp returns a strictly increasing timestamp for the next transcript
// entry.
func (s *session) stamp(now time.Time) time.Time {
	if !now.After(s.lastTS) {
		now = s.lastTS.Add(time.Millisecond)
	}
	s.lastTS = now
	return now
}

// append records one message in the transcript.
func (s *session) append(authorID, content string, ts time.Time) {
	s.conv.Messages = append(s.conv.Messages, domain.TranscriptMessage{
		Role:      authorID,
		Content:   content,
		Timestamp: ts,
	})
}

// snapshot copies the conversation so it can be persisted outside the
// manager's lock.
func (s *session) snapshot() *domain.Conversation {
	cp := *s.conv
	cp.Participants = append([]domain.SlotRecord(nil), s.conv.Participants...)
	cp.Messages = append([]domain.TranscriptMessage(nil), s.conv.Messages...)
	return &cp
}
