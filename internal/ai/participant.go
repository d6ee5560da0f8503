package ai

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/s376930/Chat-Arena/internal/domain"
	"github.com/s376930/Chat-Arena/internal/llm"
)

// Generator produces one model reply for a prepared request. The llm
// gateway satisfies this; tests inject fakes.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// MessageFunc delivers a generated AI message upward. The speech argument
// is already sanitized.
type MessageFunc func(aiID, think, speech string)

var (
	thinkTagRe  = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	speechTagRe = regexp.MustCompile(`(?s)<speech>(.*?)</speech>`)
)

// fallbackThink backfills the private rationale when the model omits or
// truncates its think section. Stored rationale must satisfy the same
// minimum length humans are held to.
const fallbackThink = "Continuing the conversation naturally based on what my partner just said."

// Behavior holds the tunables for one AI participant.
type Behavior struct {
	IdleTimeout   time.Duration
	IdleInterval  time.Duration
	PacingMin     time.Duration
	PacingMax     time.Duration
	MemoryWindow  int
	DisablePacing bool
}

// Participant drives a single AI stand-in through one session: it consumes
// partner messages, generates formatted replies, and nudges idle partners.
type Participant struct {
	ID        string
	PartnerID string
	SessionID string

	gen       Generator
	persona   Persona
	behavior  Behavior
	onMessage MessageFunc
	log       *slog.Logger

	memory *Memory

	mu        sync.Mutex
	topic     string
	task      string
	active    bool
	inFlight  bool
	sentiment string
	lastHeard time.Time

	done chan struct{}
}

// NewParticipant creates an AI participant. Start must be called before it
// reacts to anything.
func NewParticipant(id string, gen Generator, persona Persona, behavior Behavior, onMessage MessageFunc) *Participant {
	if behavior.IdleInterval <= 0 {
		behavior.IdleInterval = 30 * time.Second
	}
	return &Participant{
		ID:        id,
		gen:       gen,
		persona:   persona,
		behavior:  behavior,
		onMessage: onMessage,
		log:       slog.With("ai_id", id, "persona", persona.ID),
		memory:    NewMemory(behavior.MemoryWindow),
		sentiment: "neutral",
		done:      make(chan struct{}),
	}
}

// Start binds the participant to a session and begins idle monitoring.
func (p *Participant) Start(partnerID, sessionID, topic, task string) {
	p.mu.Lock()
	p.PartnerID = partnerID
	p.SessionID = sessionID
	p.topic = topic
	p.task = task
	p.active = true
	p.lastHeard = time.Now()
	p.mu.Unlock()

	go p.idleLoop()
	p.log.Info("ai conversation started", "partner_id", partnerID, "session_id", sessionID)
}

// Stop ends the conversation. Safe to call more than once.
func (p *Participant) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	close(p.done)
	p.mu.Unlock()
	p.log.Info("ai conversation ended")
}

// ReceiveMessage handles one partner message. The reply is generated
// asynchronously; at most one generation runs at a time, and messages
// arriving while one is in flight are remembered but answered by the next
// turn.
func (p *Participant) ReceiveMessage(speech string) {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.lastHeard = time.Now()
	result := AnalyzeSentiment(speech)
	p.sentiment = result.Sentiment
	p.memory.AddPartner(speech, result.Sentiment)

	if p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	go p.respond(false)
}

func (p *Participant) respond(idlePrompt bool) {
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	state := PromptState{
		Topic:            p.topic,
		Task:             p.task,
		PartnerSentiment: p.sentiment,
		SentimentTrend:   SentimentTrend(p.memory.RecentSentiments(5)),
		Turn:             p.memory.TurnCount(),
		IdlePrompt:       idlePrompt,
		PartnerIdle:      int(time.Since(p.lastHeard).Seconds()),
	}
	p.mu.Unlock()

	req := llm.Request{
		System:   BuildSystemPrompt(&p.persona, state),
		Messages: p.memory.Messages(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	raw, err := p.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrNoProvider) {
			p.log.Warn("no llm provider available, skipping reply")
		} else {
			p.log.Error("generation failed", "error", err)
		}
		return
	}

	think, speech := parseResponse(raw)
	speech = SanitizeSpeech(speech)
	if speech == "" {
		p.log.Warn("reply empty after sanitization, dropping")
		return
	}
	if len(think) < domain.MinThinkChars {
		think = fallbackThink
	}

	if !p.behavior.DisablePacing {
		p.pace(speech)
	}

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.memory.AddSelf(think, speech)
	p.mu.Unlock()

	if p.onMessage != nil {
		p.onMessage(p.ID, think, speech)
	}
}

// parseResponse splits a raw model reply into its think and speech parts.
// Untagged output is treated entirely as speech.
func parseResponse(raw string) (think, speech string) {
	if m := thinkTagRe.FindStringSubmatch(raw); m != nil {
		think = strings.TrimSpace(m[1])
	}
	if m := speechTagRe.FindStringSubmatch(raw); m != nil {
		speech = strings.TrimSpace(m[1])
	}
	if think == "" && speech == "" {
		speech = strings.TrimSpace(raw)
	}
	return think, speech
}

// pace sleeps for a typing-simulation delay proportional to message length,
// roughly 200ms per word clamped to the configured bounds with 20% jitter.
func (p *Participant) pace(speech string) {
	words := len(strings.Fields(speech))
	delay := time.Duration(words) * 200 * time.Millisecond
	if delay < p.behavior.PacingMin {
		delay = p.behavior.PacingMin
	}
	if p.behavior.PacingMax > 0 && delay > p.behavior.PacingMax {
		delay = p.behavior.PacingMax
	}
	delay = time.Duration(float64(delay) * (0.8 + 0.4*rand.Float64()))

	select {
	case <-time.After(delay):
	case <-p.done:
	}
}

// idleLoop periodically checks whether the partner has gone quiet and, if
// so, generates a re-engagement message.
func (p *Participant) idleLoop() {
	if p.behavior.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(p.behavior.IdleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if !p.active || p.inFlight {
			p.mu.Unlock()
			continue
		}
		idle := time.Since(p.lastHeard)
		if idle < p.behavior.IdleTimeout {
			p.mu.Unlock()
			continue
		}
		p.inFlight = true
		// Reset so one quiet spell produces one nudge per timeout window.
		p.lastHeard = time.Now()
		p.mu.Unlock()

		p.log.Info("partner idle, sending re-engagement", "idle", idle.Round(time.Second))
		p.respond(true)
	}
}

// Sentiment reports the most recently observed partner sentiment.
func (p *Participant) Sentiment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sentiment
}

// TurnCount reports how many turns the participant has in memory.
func (p *Participant) TurnCount() int {
	return p.memory.TurnCount()
}
