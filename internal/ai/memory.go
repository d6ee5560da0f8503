package ai

import (
	"sync"
	"time"

	"github.com/s376930/Chat-Arena/internal/llm"
)

// DefaultMemoryWindow bounds the rolling transcript kept per AI session.
const DefaultMemoryWindow = 50

type memoryEntry struct {
	role      string // "user" (human partner) or "assistant" (the AI)
	think     string
	speech    string
	sentiment string
	at        time.Time
}

// Memory is the bounded rolling transcript an AI participant uses to build
// generation prompts.
type Memory struct {
	mu      sync.Mutex
	entries []memoryEntry
	max     int
}

// NewMemory creates a memory window holding at most max entries.
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = DefaultMemoryWindow
	}
	return &Memory{max: max}
}

// AddPartner records a message received from the human partner.
func (m *Memory) AddPartner(speech, sentiment string) {
	m.add(memoryEntry{role: "user", speech: speech, sentiment: sentiment, at: time.Now()})
}

// AddSelf records a message the AI itself produced.
func (m *Memory) AddSelf(think, speech string) {
	m.add(memoryEntry{role: "assistant", think: think, speech: speech, at: time.Now()})
}

func (m *Memory) add(e memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
}

// Messages renders the window in provider request form. Partner turns carry
// only their speech; the AI's own turns keep the think/speech structure so
// the model stays consistent with its declared format.
func (m *Memory) Messages() []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]llm.Message, 0, len(m.entries))
	for _, e := range m.entries {
		if e.role == "user" {
			out = append(out, llm.Message{Role: "user", Content: e.speech})
			continue
		}
		out = append(out, llm.Message{
			Role:    "assistant",
			Content: "<think>" + e.think + "</think><speech>" + e.speech + "</speech>",
		})
	}
	return out
}

// TurnCount returns the number of recorded turns.
func (m *Memory) TurnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RecentSentiments returns up to count sentiments from the partner's most
// recent turns, oldest first.
func (m *Memory) RecentSentiments(count int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for i := len(m.entries) - 1; i >= 0 && len(out) < count; i-- {
		if m.entries[i].role == "user" {
			out = append(out, m.entries[i].sentiment)
		}
	}
	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
