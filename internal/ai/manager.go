package ai

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/s376930/Chat-Arena/internal/domain"
	"github.com/s376930/Chat-Arena/internal/llm"
)

var (
	// ErrAIUnavailable means no AI stand-in can be created right now,
	// either because the subsystem is disabled, no provider is usable, or
	// the concurrent cap is reached.
	ErrAIUnavailable = errors.New("ai participants unavailable")

	// ErrUnknownAI means the referenced AI participant does not exist.
	ErrUnknownAI = errors.New("unknown ai participant")
)

// Backend is the slice of the llm gateway the manager needs.
type Backend interface {
	Generator
	HasProviders() bool
}

// Manager owns every live AI participant: it spawns them up to the
// configured cap, routes partner messages to them, and tears them down.
type Manager struct {
	backend  Backend
	personas *PersonaSet
	settings *llm.Settings
	log      *slog.Logger

	mu           sync.Mutex
	participants map[string]*Participant
	onMessage    MessageFunc
}

// NewManager creates the AI manager. SetOnMessage must be called before
// any participant is spawned.
func NewManager(backend Backend, settings *llm.Settings, personas *PersonaSet) *Manager {
	return &Manager{
		backend:      backend,
		personas:     personas,
		settings:     settings,
		log:          slog.With("component", "ai"),
		participants: make(map[string]*Participant),
	}
}

// SetOnMessage installs the callback invoked whenever any AI participant
// produces a message.
func (m *Manager) SetOnMessage(fn MessageFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMessage = fn
}

// Available reports whether a new AI participant could be spawned right
// now.
func (m *Manager) Available() bool {
	if !m.settings.Enabled || !m.backend.HasProviders() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.participants) < m.settings.AIParticipants.MaxAIParticipants
}

// Spawn creates a new AI participant bound to the given partner and
// session, with a randomly chosen persona.
func (m *Manager) Spawn(partnerID, sessionID, topic, task string) (*Participant, error) {
	if !m.settings.Enabled || !m.backend.HasProviders() {
		return nil, ErrAIUnavailable
	}

	m.mu.Lock()
	if len(m.participants) >= m.settings.AIParticipants.MaxAIParticipants {
		m.mu.Unlock()
		return nil, ErrAIUnavailable
	}
	onMessage := m.onMessage
	m.mu.Unlock()

	persona := m.personas.Random()
	behavior := Behavior{
		IdleTimeout:  m.settings.IdleTimeout(),
		IdleInterval: m.settings.IdleCheckInterval(),
		PacingMin:    m.settings.PacingMin(),
		PacingMax:    m.settings.PacingMax(),
		MemoryWindow: DefaultMemoryWindow,
		// Zeroed delay bounds mean no typing simulation at all.
		DisablePacing: m.settings.Behavior.ResponseDelayMinMS == 0 && m.settings.Behavior.ResponseDelayMaxMS == 0,
	}

	p := NewParticipant(domain.NewAIID(), m.backend, persona, behavior, onMessage)

	m.mu.Lock()
	m.participants[p.ID] = p
	m.mu.Unlock()

	p.Start(partnerID, sessionID, topic, task)
	m.log.Info("spawned ai participant",
		"ai_id", p.ID, "persona", persona.ID, "partner_id", partnerID, "session_id", sessionID)
	return p, nil
}

// Remove stops and forgets an AI participant.
func (m *Manager) Remove(aiID string) {
	m.mu.Lock()
	p, ok := m.participants[aiID]
	delete(m.participants, aiID)
	m.mu.Unlock()
	if ok {
		p.Stop()
	}
}

// Get looks up a live AI participant.
func (m *Manager) Get(aiID string) (*Participant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[aiID]
	return p, ok
}

// ForwardMessage routes a human partner's speech to the AI participant it
// is paired with.
func (m *Manager) ForwardMessage(aiID, speech string) error {
	p, ok := m.Get(aiID)
	if !ok {
		return ErrUnknownAI
	}
	p.ReceiveMessage(speech)
	return nil
}

// Count reports how many AI participants are live.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.participants)
}

// Shutdown stops every live AI participant.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	participants := make([]*Participant, 0, len(m.participants))
	for _, p := range m.participants {
		participants = append(participants, p)
	}
	m.participants = make(map[string]*Participant)
	m.mu.Unlock()

	for _, p := range participants {
		p.Stop()
	}
}
