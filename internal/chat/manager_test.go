package chat

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/s376930/Chat-Arena/internal/ai"
	"github.com/s376930/Chat-Arena/internal/catalog"
	"github.com/s376930/Chat-Arena/internal/config"
	"github.com/s376930/Chat-Arena/internal/domain"
	"github.com/s376930/Chat-Arena/internal/llm"
	"github.com/s376930/Chat-Arena/internal/pairing"
	"github.com/s376930/Chat-Arena/internal/store"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events map[string][]any
	closed []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(map[string][]any)}
}

func (n *fakeNotifier) Send(id string, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[id] = append(n.events[id], event)
}

func (n *fakeNotifier) Close(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, id)
}

func (n *fakeNotifier) eventsFor(id string) []any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]any(nil), n.events[id]...)
}

func (n *fakeNotifier) lastPaired(id string) (domain.PairedEvent, bool) {
	for _, e := range n.eventsFor(id) {
		if pe, ok := e.(domain.PairedEvent); ok {
			return pe, true
		}
	}
	return domain.PairedEvent{}, false
}

func (n *fakeNotifier) countType(id, typ string) int {
	count := 0
	for _, e := range n.eventsFor(id) {
		switch ev := e.(type) {
		case domain.WaitingEvent:
			if ev.Type == typ {
				count++
			}
		case domain.PairedEvent:
			if ev.Type == typ {
				count++
			}
		case domain.MessageSentEvent:
			if ev.Type == typ {
				count++
			}
		case domain.PartnerMessageEvent:
			if ev.Type == typ {
				count++
			}
		case domain.PartnerLeftEvent:
			if ev.Type == typ {
				count++
			}
		case domain.InactivityKickEvent:
			if ev.Type == typ {
				count++
			}
		case domain.ErrorEvent:
			if ev.Type == typ {
				count++
			}
		}
	}
	return count
}

type fakeStore struct {
	mu        sync.Mutex
	persisted map[string]*domain.Conversation
	finalized map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		persisted: make(map[string]*domain.Conversation),
		finalized: make(map[string]bool),
	}
}

func (f *fakeStore) Persist(ctx context.Context, conv *domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.persisted[conv.SessionID]; !ok || len(conv.Messages) >= len(prev.Messages) {
		f.persisted[conv.SessionID] = conv
	}
	return nil
}

func (f *fakeStore) Finalize(ctx context.Context, conv *domain.Conversation) error {
	f.Persist(ctx, conv)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized[conv.SessionID] = true
	return nil
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persisted[sessionID], nil
}

func (f *fakeStore) ListSessions(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

func (f *fakeStore) conversation(sessionID string) *domain.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persisted[sessionID]
}

type fakeBackend struct {
	out       string
	providers bool
}

func (f *fakeBackend) Generate(ctx context.Context, req llm.Request) (string, error) {
	return f.out, nil
}

func (f *fakeBackend) HasProviders() bool { return f.providers }

func writeCatalogFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics_tasks.json")
	data, _ := json.Marshal(map[string][]catalog.Item{
		"topics": {{ID: 1, Text: "Travel"}},
		"tasks": {
			{ID: 1, Text: "Find out their dream destination"},
			{ID: 2, Text: "Convince them to try a road trip"},
		},
	})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

type testEnv struct {
	mgr      *Manager
	notifier *fakeNotifier
	store    *fakeStore
	engine   *pairing.Engine
	ai       *ai.Manager
}

type envOptions struct {
	aiEnabled    bool
	aiOutput     string
	delay        time.Duration
	emptyCatalog bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	catalogPath := writeCatalogFile(t)
	if opts.emptyCatalog {
		catalogPath = filepath.Join(t.TempDir(), "absent.json")
	}
	cat, err := catalog.Load(catalogPath, config.TopicRandom)
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	settings := llm.DefaultSettings()
	settings.Enabled = opts.aiEnabled
	settings.Behavior.ResponseDelayMinMS = 0
	settings.Behavior.ResponseDelayMaxMS = 0
	settings.Behavior.IdleTimeoutSeconds = 0

	personas, err := ai.LoadPersonas("does-not-exist.json")
	if err != nil {
		t.Fatalf("LoadPersonas: %v", err)
	}
	backend := &fakeBackend{out: opts.aiOutput, providers: opts.aiEnabled}
	aiMgr := ai.NewManager(backend, settings, personas)
	t.Cleanup(aiMgr.Shutdown)

	notifier := newFakeNotifier()
	st := newFakeStore()
	engine := pairing.NewEngine(opts.delay, opts.delay > 0)

	mgr := NewManager(notifier, st, cat, engine, aiMgr, settings, Options{
		AllowDuplicateTask: true,
	})
	aiMgr.SetOnMessage(mgr.HandleAIMessage)

	return &testEnv{mgr: mgr, notifier: notifier, store: st, engine: engine, ai: aiMgr}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestJoinPairsTwoHumans(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_aaaa0001")
	env.mgr.Join("user_bbbb0002")

	pa, ok := env.notifier.lastPaired("user_aaaa0001")
	if !ok {
		t.Fatal("first participant never paired")
	}
	pb, ok := env.notifier.lastPaired("user_bbbb0002")
	if !ok {
		t.Fatal("second participant never paired")
	}

	if pa.SessionID == "" || pa.SessionID != pb.SessionID {
		t.Errorf("session ids %q and %q, want one shared id", pa.SessionID, pb.SessionID)
	}
	if pa.Topic != "Travel" || pb.Topic != "Travel" {
		t.Errorf("topics %q / %q, want Travel", pa.Topic, pb.Topic)
	}
	if pa.Task == pb.Task {
		t.Errorf("both slots got task %q, want distinct tasks from a two-entry pool", pa.Task)
	}
	if env.engine.Len() != 0 {
		t.Errorf("queue length %d after pairing, want 0", env.engine.Len())
	}
}

func TestPairingRefusedWhenCatalogEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{emptyCatalog: true})

	env.mgr.Join("user_em000001")
	env.mgr.Join("user_em000002")

	for _, id := range []string{"user_em000001", "user_em000002"} {
		if _, ok := env.notifier.lastPaired(id); ok {
			t.Errorf("%s paired despite empty topic and task pools", id)
		}
		if got := env.notifier.countType(id, domain.EventError); got != 1 {
			t.Errorf("%s got %d error events, want 1", id, got)
		}
	}

	var msg string
	for _, e := range env.notifier.eventsFor("user_em000001") {
		if ev, ok := e.(domain.ErrorEvent); ok {
			msg = ev.Message
		}
	}
	if !strings.Contains(msg, "No topics or tasks available") {
		t.Errorf("error message = %q", msg)
	}
	if env.engine.Len() != 2 {
		t.Errorf("queue length = %d, want both participants requeued", env.engine.Len())
	}
}

func TestAIPairingRefusedWhenCatalogEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{
		emptyCatalog: true,
		aiEnabled:    true,
		aiOutput:     "<think>never reached with empty pools</think><speech>Hello?</speech>",
	})

	env.mgr.Join("user_em000003")

	if _, ok := env.notifier.lastPaired("user_em000003"); ok {
		t.Fatal("lone participant paired with ai despite empty pools")
	}
	if env.ai.Count() != 0 {
		t.Errorf("ai count = %d, want 0", env.ai.Count())
	}
	if env.engine.Position("user_em000003") != 1 {
		t.Errorf("position = %d, want still queued at 1", env.engine.Position("user_em000003"))
	}
}

func TestLoneJoinWaitsWithoutAI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{aiEnabled: false})

	env.mgr.Join("user_solo0001")

	events := env.notifier.eventsFor("user_solo0001")
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 waiting", len(events))
	}
	w, ok := events[0].(domain.WaitingEvent)
	if !ok || w.Position != 1 {
		t.Errorf("event = %+v, want waiting at position 1", events[0])
	}
}

func TestLoneJoinPairsWithAI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{
		aiEnabled: true,
		aiOutput:  "<think>greet them and open the topic</think><speech>Hi! Where would you travel first?</speech>",
	})

	env.mgr.Join("user_solo0002")

	pe, ok := env.notifier.lastPaired("user_solo0002")
	if !ok {
		t.Fatal("lone participant never paired with ai")
	}
	if pe.SessionID == "" {
		t.Error("paired event missing session id")
	}
	if env.ai.Count() != 1 {
		t.Errorf("ai count = %d, want 1", env.ai.Count())
	}
	if env.engine.Len() != 0 {
		t.Errorf("queue length %d, want 0", env.engine.Len())
	}
}

func TestAIPartnerReplies(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{
		aiEnabled: true,
		aiOutput:  "<think>they asked about beaches, suggest one</think><speech>Tulum is hard to beat.</speech>",
	})

	env.mgr.Join("user_solo0003")
	env.mgr.SubmitMessage("user_solo0003", "I want a beach recommendation", "Know any good beaches?")

	eventually(t, func() bool {
		return env.notifier.countType("user_solo0003", domain.EventPartnerMessage) > 0
	}, "never received ai partner_message")

	for _, e := range env.notifier.eventsFor("user_solo0003") {
		if pm, ok := e.(domain.PartnerMessageEvent); ok {
			if pm.Content != "Tulum is hard to beat." {
				t.Errorf("partner message content = %q", pm.Content)
			}
			if strings.Contains(pm.Content, "<think>") {
				t.Error("private rationale leaked to partner")
			}
		}
	}
}

func TestSubmitMessageFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_msg00001")
	env.mgr.Join("user_msg00002")

	env.mgr.SubmitMessage("user_msg00001", "I will ask a question", "Hi there")

	if got := env.notifier.countType("user_msg00001", domain.EventMessageSent); got != 1 {
		t.Errorf("sender got %d message_sent events, want 1", got)
	}
	if got := env.notifier.countType("user_msg00002", domain.EventPartnerMessage); got != 1 {
		t.Fatalf("partner got %d partner_message events, want 1", got)
	}

	var pm domain.PartnerMessageEvent
	for _, e := range env.notifier.eventsFor("user_msg00002") {
		if v, ok := e.(domain.PartnerMessageEvent); ok {
			pm = v
		}
	}
	if pm.Content != "Hi there" {
		t.Errorf("partner saw %q, want speech only", pm.Content)
	}

	pe, _ := env.notifier.lastPaired("user_msg00001")
	eventually(t, func() bool {
		conv := env.store.conversation(pe.SessionID)
		return conv != nil && len(conv.Messages) == 1
	}, "message never persisted")

	conv := env.store.conversation(pe.SessionID)
	want := "<think>I will ask a question</think>Hi there"
	if conv.Messages[0].Content != want {
		t.Errorf("stored content = %q, want %q", conv.Messages[0].Content, want)
	}
	if conv.Messages[0].Role != "user_msg00001" {
		t.Errorf("stored role = %q", conv.Messages[0].Role)
	}
}

func TestSubmitMessageValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_val00001")
	env.mgr.Join("user_val00002")

	tests := []struct {
		name    string
		think   string
		speech  string
		wantErr bool
	}{
		{"think nine chars rejected", "123456789", "hello", true},
		{"think ten chars accepted", "1234567890", "hello", false},
		{"empty speech rejected", "a perfectly fine thought", "   ", true},
	}

	for _, tt := range tests {
		before := env.notifier.countType("user_val00002", domain.EventPartnerMessage)
		env.mgr.SubmitMessage("user_val00001", tt.think, tt.speech)

		gotErr := env.notifier.countType("user_val00001", domain.EventError) > 0
		if gotErr != tt.wantErr {
			t.Errorf("%s: error event = %v, want %v", tt.name, gotErr, tt.wantErr)
		}
		after := env.notifier.countType("user_val00002", domain.EventPartnerMessage)
		delivered := after - before
		if tt.wantErr && delivered != 0 {
			t.Errorf("%s: invalid message reached partner", tt.name)
		}
		if !tt.wantErr && delivered != 1 {
			t.Errorf("%s: valid message not delivered, got %d", tt.name, delivered)
		}

		// Reset error counts between cases by tracking a fresh baseline.
		env.notifier.mu.Lock()
		env.notifier.events["user_val00001"] = nil
		env.notifier.mu.Unlock()
	}
}

func TestSubmitOutsideSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.SubmitMessage("user_ghost001", "a long enough thought", "hello?")
	if got := env.notifier.countType("user_ghost001", domain.EventError); got != 1 {
		t.Errorf("got %d error events, want 1", got)
	}
}

func TestTimestampsStrictlyIncrease(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	// Freeze the clock so monotonicity must come from the session stamp.
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	env.mgr.now = func() time.Time { return fixed }

	env.mgr.Join("user_ts000001")
	env.mgr.Join("user_ts000002")

	env.mgr.SubmitMessage("user_ts000001", "first thought here", "one")
	env.mgr.SubmitMessage("user_ts000002", "second thought here", "two")
	env.mgr.SubmitMessage("user_ts000001", "third thought here", "three")

	pe, _ := env.notifier.lastPaired("user_ts000001")
	eventually(t, func() bool {
		conv := env.store.conversation(pe.SessionID)
		return conv != nil && len(conv.Messages) == 3
	}, "messages never persisted")

	conv := env.store.conversation(pe.SessionID)
	for i := 1; i < len(conv.Messages); i++ {
		if !conv.Messages[i].Timestamp.After(conv.Messages[i-1].Timestamp) {
			t.Errorf("timestamp %d (%v) not after %d (%v)",
				i, conv.Messages[i].Timestamp, i-1, conv.Messages[i-1].Timestamp)
		}
	}
}

func TestReassignRequeuesPartnerAndDelaysRequester(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{delay: 50 * time.Millisecond})

	env.mgr.Join("user_re000001")
	env.mgr.Join("user_re000002")

	env.mgr.Reassign("user_re000001")

	if got := env.notifier.countType("user_re000002", domain.EventPartnerLeft); got != 1 {
		t.Fatalf("partner got %d partner_left events, want exactly 1", got)
	}
	var pl domain.PartnerLeftEvent
	for _, e := range env.notifier.eventsFor("user_re000002") {
		if v, ok := e.(domain.PartnerLeftEvent); ok {
			pl = v
		}
	}
	if pl.Reason != string(domain.EndReassigned) {
		t.Errorf("partner_left reason = %q, want reassigned", pl.Reason)
	}

	// The abandoned partner requeues immediately; the requester is held out
	// of the queue for the delay window.
	if env.engine.Position("user_re000002") != 1 {
		t.Errorf("partner position = %d, want 1", env.engine.Position("user_re000002"))
	}
	if env.engine.Position("user_re000001") != 0 {
		t.Error("requester back in queue during delay window")
	}
	if !env.engine.IsDelayed("user_re000001") {
		t.Error("requester not marked delayed")
	}

	// After the delay the two remaining participants pair again.
	eventually(t, func() bool {
		return env.notifier.countType("user_re000001", domain.EventPaired) == 2
	}, "requester never re-paired after delay")

	first, _ := env.notifier.lastPaired("user_re000001")
	var second domain.PairedEvent
	for _, e := range env.notifier.eventsFor("user_re000001") {
		if v, ok := e.(domain.PairedEvent); ok {
			second = v
		}
	}
	if second.SessionID == first.SessionID {
		t.Error("re-pairing reused the ended session id")
	}
}

func TestJoinDuringReassignmentDelay(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{delay: 50 * time.Millisecond})

	env.mgr.Join("user_jd000001")
	env.mgr.Join("user_jd000002")
	env.mgr.Reassign("user_jd000001")

	env.mgr.Join("user_jd000001")

	if got := env.notifier.countType("user_jd000001", domain.EventError); got != 1 {
		t.Errorf("join during delay produced %d error events, want 1", got)
	}
	if env.engine.Position("user_jd000001") != 0 {
		t.Error("delayed participant entered the queue early")
	}

	// The delay timer still restores them to matching.
	eventually(t, func() bool {
		return env.notifier.countType("user_jd000001", domain.EventPaired) == 2
	}, "participant never re-paired after the delay")
}

func TestConcurrentSubmitsKeepTranscriptWellFormed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_cc000001")
	env.mgr.Join("user_cc000002")
	pe, _ := env.notifier.lastPaired("user_cc000001")

	const perSender = 10
	var wg sync.WaitGroup
	for _, id := range []string{"user_cc000001", "user_cc000002"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				env.mgr.SubmitMessage(id, "a thought long enough to store", "still here, talking about travel")
			}
		}(id)
	}
	wg.Wait()

	eventually(t, func() bool {
		conv := env.store.conversation(pe.SessionID)
		return conv != nil && len(conv.Messages) == 2*perSender
	}, "not every concurrent message persisted")

	conv := env.store.conversation(pe.SessionID)
	for i, msg := range conv.Messages {
		think, speech := domain.SplitContent(msg.Content)
		if len(think) < domain.MinThinkChars || speech == "" {
			t.Errorf("message %d malformed: %q", i, msg.Content)
		}
		if i > 0 && !msg.Timestamp.After(conv.Messages[i-1].Timestamp) {
			t.Errorf("timestamp %d (%v) not after %d (%v)",
				i, msg.Timestamp, i-1, conv.Messages[i-1].Timestamp)
		}
	}
	for _, id := range []string{"user_cc000001", "user_cc000002"} {
		if got := env.notifier.countType(id, domain.EventMessageSent); got != perSender {
			t.Errorf("%s got %d message_sent acks, want %d", id, got, perSender)
		}
		if got := env.notifier.countType(id, domain.EventPartnerMessage); got != perSender {
			t.Errorf("%s got %d partner messages, want %d", id, got, perSender)
		}
	}
}

func TestDisconnectEndsSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_dc000001")
	env.mgr.Join("user_dc000002")
	pe, _ := env.notifier.lastPaired("user_dc000001")

	env.mgr.Disconnect("user_dc000001")

	if got := env.notifier.countType("user_dc000002", domain.EventPartnerLeft); got != 1 {
		t.Fatalf("partner got %d partner_left events, want 1", got)
	}
	var pl domain.PartnerLeftEvent
	for _, e := range env.notifier.eventsFor("user_dc000002") {
		if v, ok := e.(domain.PartnerLeftEvent); ok {
			pl = v
		}
	}
	if pl.Reason != string(domain.EndDisconnected) {
		t.Errorf("reason = %q, want disconnected", pl.Reason)
	}
	if env.engine.Position("user_dc000002") != 1 {
		t.Errorf("survivor position = %d, want requeued at 1", env.engine.Position("user_dc000002"))
	}

	eventually(t, func() bool {
		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		return env.store.finalized[pe.SessionID]
	}, "session never finalized")
}

func TestDisconnectFromAISessionRetiresAI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{
		aiEnabled: true,
		aiOutput:  "<think>short-lived session anyway</think><speech>Hello!</speech>",
	})

	env.mgr.Join("user_dcai0001")
	if env.ai.Count() != 1 {
		t.Fatalf("ai count = %d, want 1", env.ai.Count())
	}

	env.mgr.Disconnect("user_dcai0001")
	if env.ai.Count() != 0 {
		t.Errorf("ai count after disconnect = %d, want 0", env.ai.Count())
	}
}

func TestInactivityKick(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	env.mgr.opts.InactivityTimeout = 10 * time.Minute

	env.mgr.Join("user_idle0001")
	env.mgr.Join("user_idle0002")

	// Age the first participant past the timeout.
	env.mgr.mu.Lock()
	env.mgr.participants["user_idle0001"].lastActive = time.Now().Add(-time.Hour)
	env.mgr.mu.Unlock()

	env.mgr.kickInactive()

	if got := env.notifier.countType("user_idle0001", domain.EventInactivityKick); got != 1 {
		t.Errorf("kicked participant got %d inactivity_kick events, want 1", got)
	}
	if got := env.notifier.countType("user_idle0002", domain.EventPartnerLeft); got != 1 {
		t.Fatalf("partner got %d partner_left events, want 1", got)
	}
	var pl domain.PartnerLeftEvent
	for _, e := range env.notifier.eventsFor("user_idle0002") {
		if v, ok := e.(domain.PartnerLeftEvent); ok {
			pl = v
		}
	}
	if pl.Reason != string(domain.EndInactive) {
		t.Errorf("reason = %q, want inactive", pl.Reason)
	}

	env.notifier.mu.Lock()
	closed := append([]string(nil), env.notifier.closed...)
	env.notifier.mu.Unlock()
	if len(closed) != 1 || closed[0] != "user_idle0001" {
		t.Errorf("closed connections = %v, want the kicked participant", closed)
	}
}

func TestShutdownFinalizesSessions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})

	env.mgr.Join("user_sd000001")
	env.mgr.Join("user_sd000002")
	pe, _ := env.notifier.lastPaired("user_sd000001")

	env.mgr.SubmitMessage("user_sd000001", "closing thought here", "goodbye")

	if err := env.mgr.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	env.store.mu.Lock()
	finalized := env.store.finalized[pe.SessionID]
	env.store.mu.Unlock()
	if !finalized {
		t.Error("session not finalized at shutdown")
	}

	// No work accepted after shutdown.
	env.mgr.Join("user_sd000003")
	if len(env.notifier.eventsFor("user_sd000003")) != 0 {
		t.Error("manager accepted a join after shutdown")
	}
}

var _ store.TranscriptStore = (*fakeStore)(nil)
var _ Notifier = (*fakeNotifier)(nil)
var _ ai.Backend = (*fakeBackend)(nil)
