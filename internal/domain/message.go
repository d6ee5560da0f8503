package domain

import (
	"strings"
	"time"
)

// MinThinkChars is the minimum length of the private-thought field before a
// message is accepted.
const MinThinkChars = 10

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// Message is a single conversation turn: a private thought authored before
// speaking, and the spoken text actually delivered to the peer.
type Message struct {
	AuthorID  string    `json:"author_id"`
	Think     string    `json:"think"`
	Speech    string    `json:"speech"`
	Timestamp time.Time `json:"timestamp"`
}

// Content renders the persisted form of the message. Thought and speech are
// concatenated into one string with explicit delimiters so both survive in a
// single append-only record.
func (m Message) Content() string {
	return thinkOpen + m.Think + thinkClose + m.Speech
}

// SplitContent is the inverse of Content, used when replaying stored
// transcripts. Content without a think delimiter is treated as pure speech.
func SplitContent(content string) (think, speech string) {
	if !strings.HasPrefix(content, thinkOpen) {
		return "", content
	}
	rest := content[len(thinkOpen):]
	idx := strings.Index(rest, thinkClose)
	if idx < 0 {
		return "", content
	}
	return rest[:idx], rest[idx+len(thinkClose):]
}

// ValidateMessage checks the think-before-speak input discipline. The think
// field is measured as written; speech must be non-empty after trimming.
func ValidateMessage(think, speech string) error {
	if len(think) < MinThinkChars {
		return ErrThinkTooShort
	}
	if strings.TrimSpace(speech) == "" {
		return ErrEmptySpeech
	}
	return nil
}
