// Package chat orchestrates sessions: pairing, message routing, transcript
// capture, and teardown.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/s376930/Chat-Arena/internal/ai"
	"github.com/s376930/Chat-Arena/internal/catalog"
	"github.com/s376930/Chat-Arena/internal/domain"
	"github.com/s376930/Chat-Arena/internal/llm"
	"github.com/s376930/Chat-Arena/internal/pairing"
	"github.com/s376930/Chat-Arena/internal/store"
)

// Notifier delivers server events to connected participants. Events for
// unknown or gone participants are dropped silently.
type Notifier interface {
	Send(participantID string, event any)
	Close(participantID string)
}

// Options tunes manager behavior beyond its collaborators.
type Options struct {
	AllowDuplicateTask bool
	InactivityTimeout  time.Duration
	InactivityInterval time.Duration
}

// Manager is the orchestration core. One lock serializes all state
// transitions; slow work (persistence, AI generation) happens outside it.
type Manager struct {
	notifier Notifier
	store    store.TranscriptStore
	catalog  *catalog.Catalog
	engine   *pairing.Engine
	ai       *ai.Manager
	settings *llm.Settings
	opts     Options
	log      *slog.Logger

	mu           sync.Mutex
	participants map[string]*participant
	sessions     map[string]*session
	delayTimers  map[string]*time.Timer
	closed       bool

	persistWG sync.WaitGroup
	now       func() time.Time
}

// NewManager wires the orchestration core. Call SetOnMessage on the AI
// manager with HandleAIMessage before serving traffic.
func NewManager(
	notifier Notifier,
	ts store.TranscriptStore,
	cat *catalog.Catalog,
	engine *pairing.Engine,
	aiMgr *ai.Manager,
	settings *llm.Settings,
	opts Options,
) *Manager {
	if opts.InactivityInterval <= 0 {
		opts.InactivityInterval = time.Minute
	}
	return &Manager{
		notifier:     notifier,
		store:        ts,
		catalog:      cat,
		engine:       engine,
		ai:           aiMgr,
		settings:     settings,
		opts:         opts,
		log:          slog.With("component", "chat"),
		participants: make(map[string]*participant),
		sessions:     make(map[string]*session),
		delayTimers:  make(map[string]*time.Timer),
		now:          time.Now,
	}
}

// Join registers a participant and places it in the wait queue. Joining
// while already queued or in a session is reported back as an error event.
func (m *Manager) Join(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	if p, ok := m.participants[id]; ok && (p.sessionID != "" || m.engine.Position(id) > 0) {
		m.notifier.Send(id, domain.NewError("You are already in the queue or a session"))
		return
	}
	if m.engine.IsDelayed(id) {
		m.notifier.Send(id, domain.NewError("You were recently reassigned. You will be matched again shortly."))
		return
	}

	m.participants[id] = &participant{id: id, lastActive: m.now()}
	m.enqueueLocked(id)
	m.matchLocked()
}

// SubmitMessage validates and routes one message from a participant.
func (m *Manager) SubmitMessage(id, think, speech string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	p, ok := m.participants[id]
	if !ok || p.sessionID == "" {
		m.notifier.Send(id, domain.NewError("You are not in an active chat session"))
		return
	}
	s, ok := m.sessions[p.sessionID]
	if !ok || s.state != domain.SessionActive {
		m.notifier.Send(id, domain.NewError("You are not in an active chat session"))
		return
	}

	if err := domain.ValidateMessage(think, speech); err != nil {
		m.notifier.Send(id, domain.NewError(err.Error()))
		return
	}

	p.lastActive = m.now()
	ts := s.stamp(m.now())
	msg := domain.Message{AuthorID: id, Think: think, Speech: speech, Timestamp: ts}
	s.append(id, msg.Content(), ts)

	wire := wireTime(ts)
	m.notifier.Send(id, domain.NewMessageSent(wire))

	partnerID := s.partnerOf(id)
	if domain.IsAIID(partnerID) {
		go m.ai.ForwardMessage(partnerID, speech)
	} else {
		m.notifier.Send(partnerID, domain.NewPartnerMessage(speech, wire))
	}

	m.persistAsync(s.snapshot(), false)
}

// HandleAIMessage is the AI manager's message callback: it records the AI's
// turn and relays the speech to the human partner.
func (m *Manager) HandleAIMessage(aiID, think, speech string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	p, ok := m.participants[aiID]
	if !ok || p.sessionID == "" {
		m.log.Warn("message from unknown ai", "ai_id", aiID)
		return
	}
	s, ok := m.sessions[p.sessionID]
	if !ok || s.state != domain.SessionActive {
		return
	}

	p.lastActive = m.now()
	ts := s.stamp(m.now())
	msg := domain.Message{AuthorID: aiID, Think: think, Speech: speech, Timestamp: ts}
	s.append(aiID, msg.Content(), ts)

	m.notifier.Send(s.partnerOf(aiID), domain.NewPartnerMessage(speech, wireTime(ts)))
	m.persistAsync(s.snapshot(), false)
}

// Reassign ends the caller's session and, after the configured delay,
// returns the caller to the wait queue. The abandoned partner requeues
// immediately.
func (m *Manager) Reassign(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	p, ok := m.participants[id]
	if !ok {
		return
	}
	if p.sessionID == "" {
		// Queued but unpaired. Nothing to leave.
		m.notifier.Send(id, domain.NewError("You are not in an active chat session"))
		return
	}
	s, ok := m.sessions[p.sessionID]
	if !ok {
		p.sessionID = ""
		return
	}

	m.endSessionLocked(s, domain.EndReassigned, id)

	if m.engine.DelayEnabled() {
		m.engine.StartDelay(id)
		delay := m.engine.Delay()
		m.delayTimers[id] = time.AfterFunc(delay, func() { m.delayExpired(id) })
		m.log.Info("reassignment delay started", "participant_id", id, "delay", delay)
	} else {
		m.enqueueLocked(id)
	}
	m.matchLocked()
}

// Disconnect removes a participant entirely: from the queue, from any
// delay, and from its session.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id, domain.EndDisconnected, false)
}

// Flush persists every live conversation. Used at shutdown and on demand.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	snapshots := make([]*domain.Conversation, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshots = append(snapshots, s.snapshot())
	}
	m.mu.Unlock()

	var errs []error
	for _, conv := range snapshots {
		if err := m.store.Persist(ctx, conv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown force-ends every session, finalizes transcripts, and stops the
// AI subsystem. The manager accepts no work afterwards.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for _, t := range m.delayTimers {
		t.Stop()
	}
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	var errs []error
	for _, s := range sessions {
		s.state = domain.SessionEnded
		ended := m.now().UTC()
		s.conv.EndedAt = &ended
		delete(m.sessions, s.id)
	}
	snapshots := make([]*domain.Conversation, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.snapshot())
	}
	m.mu.Unlock()

	m.ai.Shutdown()
	m.persistWG.Wait()

	for _, conv := range snapshots {
		if err := m.store.Finalize(ctx, conv); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartInactivityWatcher kicks participants idle past the timeout. It runs
// until ctx is canceled. A zero timeout disables the watcher.
func (m *Manager) StartInactivityWatcher(ctx context.Context) {
	if m.opts.InactivityTimeout <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.opts.InactivityInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.kickInactive()
			}
		}
	}()
}

func (m *Manager) kickInactive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	cutoff := m.now().Add(-m.opts.InactivityTimeout)
	var idle []string
	for id, p := range m.participants {
		if !domain.IsAIID(id) && p.lastActive.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	for _, id := range idle {
		m.log.Info("kicking inactive participant", "participant_id", id)
		m.notifier.Send(id, domain.NewInactivityKick())
		m.removeLocked(id, domain.EndInactive, true)
	}
}

// delayExpired fires when a reassignment delay elapses: the participant
// rejoins the queue if still connected and unpaired.
func (m *Manager) delayExpired(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	delete(m.delayTimers, id)
	m.engine.ClearDelay(id)

	p, ok := m.participants[id]
	if !ok || p.sessionID != "" {
		return
	}
	m.enqueueLocked(id)
	m.matchLocked()
}

// enqueueLocked adds id to the wait queue and reports its position.
func (m *Manager) enqueueLocked(id string) {
	pos, err := m.engine.Enqueue(id)
	if err != nil {
		m.log.Warn("enqueue rejected", "participant_id", id, "error", err)
		return
	}
	m.notifier.Send(id, domain.NewWaiting(pos))
}

// matchLocked drains the queue: pairs of humans first, then an AI stand-in
// for a lone waiter when permitted.
func (m *Manager) matchLocked() {
	for {
		a, b, ok := m.engine.NextPair()
		if !ok {
			break
		}
		if !m.createSessionLocked(a, b) {
			break
		}
	}

	lone, ok := m.engine.LoneWaiter()
	if !ok {
		return
	}
	if !m.settings.AIParticipants.ForceAIOnOddUsers || !m.ai.Available() {
		return
	}
	m.pairWithAILocked(lone)
}

const noAssignmentMsg = "No topics or tasks available. Please try again later."

// pickAssignment draws a topic and two tasks. Empty pools make pairing
// impossible and are reported via ok=false.
func (m *Manager) pickAssignment() (topic, taskA, taskB string, ok bool) {
	item, err := m.catalog.PickTopic()
	if err != nil {
		if !errors.Is(err, catalog.ErrEmpty) {
			m.log.Warn("topic selection failed", "error", err)
		}
		return "", "", "", false
	}
	topic = item.Text

	a, b, err := m.catalog.PickTasks()
	if err != nil {
		if !errors.Is(err, catalog.ErrEmpty) {
			m.log.Warn("task selection failed", "error", err)
		}
		return "", "", "", false
	}
	taskA, taskB = a.Text, b.Text
	if taskA == taskB && !m.opts.AllowDuplicateTask {
		m.log.Warn("task pool too small for distinct tasks, second slot gets none")
		taskB = ""
	}
	return topic, taskA, taskB, true
}

// createSessionLocked pairs two queued humans. With empty topic or task
// pools the pairing is refused: both return to the queue and are told why.
func (m *Manager) createSessionLocked(a, b string) bool {
	topic, taskA, taskB, ok := m.pickAssignment()
	if !ok {
		for _, id := range []string{a, b} {
			if _, err := m.engine.Enqueue(id); err != nil {
				m.log.Warn("requeue after refused pairing failed", "participant_id", id, "error", err)
			}
			m.notifier.Send(id, domain.NewError(noAssignmentMsg))
		}
		m.log.Warn("pairing refused, topic or task pool empty", "a", a, "b", b)
		return false
	}

	s := newSession(topic, [2]domain.SlotRecord{
		{ParticipantID: a, Task: taskA},
		{ParticipantID: b, Task: taskB},
	}, m.now().UTC())
	m.sessions[s.id] = s

	for _, id := range []string{a, b} {
		if p, ok := m.participants[id]; ok {
			p.sessionID = s.id
			p.lastActive = m.now()
		}
	}

	m.notifier.Send(a, domain.NewPaired(s.id, topic, s.taskOf(a)))
	m.notifier.Send(b, domain.NewPaired(s.id, topic, s.taskOf(b)))
	m.log.Info("session created", "session_id", s.id, "topic", topic, "a", a, "b", b)

	m.persistAsync(s.snapshot(), false)
	return true
}

func (m *Manager) pairWithAILocked(humanID string) {
	topic, taskHuman, taskAI, ok := m.pickAssignment()
	if !ok {
		// The lone waiter stays queued until the pools are refilled.
		m.log.Warn("no topics or tasks available for ai pairing", "participant_id", humanID)
		return
	}
	s := newSession(topic, [2]domain.SlotRecord{
		{ParticipantID: humanID, Task: taskHuman},
		{Task: taskAI},
	}, m.now().UTC())

	p, err := m.ai.Spawn(humanID, s.id, topic, taskAI)
	if err != nil {
		// Human stays queued for the next human arrival.
		m.log.Warn("ai spawn failed, leaving participant queued", "participant_id", humanID, "error", err)
		return
	}

	s.slots[1].ParticipantID = p.ID
	s.conv.Participants = s.slots[:]
	m.sessions[s.id] = s
	m.engine.Remove(humanID)

	m.participants[p.ID] = &participant{id: p.ID, sessionID: s.id, lastActive: m.now()}
	if hp, ok := m.participants[humanID]; ok {
		hp.sessionID = s.id
		hp.lastActive = m.now()
	}

	m.notifier.Send(humanID, domain.NewPaired(s.id, topic, s.taskOf(humanID)))
	m.log.Info("session created with ai stand-in",
		"session_id", s.id, "topic", topic, "human", humanID, "ai", p.ID)

	m.persistAsync(s.snapshot(), false)
}

// removeLocked takes a participant out of every structure. When kicked is
// true the removal came from the inactivity watcher and the connection is
// closed server-side.
func (m *Manager) removeLocked(id string, reason domain.EndReason, kicked bool) {
	p, ok := m.participants[id]
	if !ok {
		return
	}
	delete(m.participants, id)
	m.engine.Remove(id)
	m.engine.ClearDelay(id)
	if t, ok := m.delayTimers[id]; ok {
		t.Stop()
		delete(m.delayTimers, id)
	}

	if p.sessionID != "" {
		if s, ok := m.sessions[p.sessionID]; ok {
			m.endSessionLocked(s, reason, id)
			m.matchLocked()
		}
	}
	if kicked {
		m.notifier.Close(id)
	}
}

// endSessionLocked ends a session: the leaver keeps its own fate, the peer
// is notified and requeued (humans) or retired (AI).
func (m *Manager) endSessionLocked(s *session, reason domain.EndReason, leaverID string) {
	if s.state != domain.SessionActive {
		return
	}
	s.state = domain.SessionEnded
	ended := m.now().UTC()
	s.conv.EndedAt = &ended
	delete(m.sessions, s.id)

	for _, slot := range s.slots {
		pid := slot.ParticipantID
		p, ok := m.participants[pid]
		if !ok {
			continue
		}
		p.sessionID = ""
		if pid == leaverID {
			continue
		}
		if domain.IsAIID(pid) {
			m.ai.Remove(pid)
			delete(m.participants, pid)
			continue
		}
		m.notifier.Send(pid, domain.NewPartnerLeft(reason))
		m.enqueueLocked(pid)
	}

	m.log.Info("session ended", "session_id", s.id, "reason", reason)
	m.persistAsync(s.snapshot(), true)
}

const persistAttempts = 3

// persistAsync writes a conversation snapshot off the hot path, retrying a
// bounded number of times. A snapshot that still fails is not lost: the live
// transcript is retained in the session and rewritten on the next message
// and at finalize.
func (m *Manager) persistAsync(conv *domain.Conversation, final bool) {
	m.persistWG.Add(1)
	go func() {
		defer m.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		for attempt := 0; attempt < persistAttempts; attempt++ {
			if final {
				err = m.store.Finalize(ctx, conv)
			} else {
				err = m.store.Persist(ctx, conv)
			}
			if err == nil {
				return
			}
			select {
			case <-ctx.Done():
				m.log.Error("transcript persist abandoned", "session_id", conv.SessionID, "error", err)
				return
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
		m.log.Error("transcript persist failed", "session_id", conv.SessionID, "error", err)
	}()
}

func wireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
