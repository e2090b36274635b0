package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"furrykids/internal/schedule"
	"furrykids/pkg/ai"
	"furrykids/pkg/domain"
)

// scriptedScheduler captures scheduled tasks so tests can run them in any
// order, simulating reply delays resolving out of issue order.
type scriptedScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

type scriptedTimer struct{}

func (scriptedTimer) Stop() bool { return false }

func (s *scriptedScheduler) AfterFunc(_ time.Duration, fn func()) schedule.Timer {
	s.mu.Lock()
	s.tasks = append(s.tasks, fn)
	s.mu.Unlock()
	return scriptedTimer{}
}

func (s *scriptedScheduler) run(i int) {
	s.mu.Lock()
	fn := s.tasks[i]
	s.mu.Unlock()
	fn()
}

func (s *scriptedScheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// echoGenerator replies "re:<message>" so tests can match replies to sends.
type echoGenerator struct {
	err error
}

func (g echoGenerator) Generate(_ context.Context, message string, _ []domain.Message, _, _ string) (ai.Reply, error) {
	if g.err != nil {
		return ai.Reply{}, g.err
	}
	return ai.Reply{Text: "re:" + message, Mood: "平静"}, nil
}

type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
	active bool
}

func (s *recordingSpeaker) Speak(text string) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.active = true
	s.mu.Unlock()
}

func (s *recordingSpeaker) Stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *recordingSpeaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

type recordingHistory struct {
	mu       sync.Mutex
	appended []domain.Message
	cleared  int
}

func (h *recordingHistory) Append(_ context.Context, _ uuid.UUID, msg domain.Message) error {
	h.mu.Lock()
	h.appended = append(h.appended, msg)
	h.mu.Unlock()
	return nil
}

func (h *recordingHistory) Recent(context.Context, uuid.UUID, int) ([]domain.Message, error) {
	return nil, nil
}

func (h *recordingHistory) Clear(context.Context, uuid.UUID) error {
	h.mu.Lock()
	h.cleared++
	h.mu.Unlock()
	return nil
}

func newTestStore(gen ai.ReplyGenerator, sched schedule.Scheduler, speaker Speaker, history History) *ConversationStore {
	return NewConversationStore(ConversationConfig{
		Generator: gen,
		Pet:       domain.SamplePets()[0],
		Speaker:   speaker,
		Scheduler: sched,
		History:   history,
		Rand:      rand.New(rand.NewSource(42)),
	})
}

func TestWelcomeMessageArrivesOnce(t *testing.T) {
	fake := schedule.NewFake()
	s := newTestStore(echoGenerator{}, fake, nil, nil)

	if got := len(s.Snapshot().Messages); got != 0 {
		t.Fatalf("conversation should start empty, got %d messages", got)
	}
	fake.Advance(500 * time.Millisecond)

	snap := s.Snapshot()
	if len(snap.Messages) != 1 {
		t.Fatalf("expected exactly the welcome message, got %d", len(snap.Messages))
	}
	welcome := snap.Messages[0]
	if welcome.Origin != domain.OriginPet || welcome.Mood != "开心" {
		t.Fatalf("unexpected welcome message: %+v", welcome)
	}

	fake.Advance(time.Hour)
	if got := len(s.Snapshot().Messages); got != 1 {
		t.Fatalf("welcome must be one-time, got %d messages", got)
	}
}

func TestSendRejectsBlankInput(t *testing.T) {
	sched := &scriptedScheduler{}
	s := newTestStore(echoGenerator{}, sched, nil, nil)
	tasksBefore := sched.len()

	s.Send(context.Background(), "")
	s.Send(context.Background(), "   ")
	s.Send(context.Background(), "\n\t")

	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Fatalf("blank sends must not append messages: %d", len(snap.Messages))
	}
	if snap.Typing {
		t.Fatalf("blank sends must not toggle typing")
	}
	if sched.len() != tasksBefore {
		t.Fatalf("blank sends must not schedule reply cycles")
	}
}

func TestSendCycleAppendsUserThenPet(t *testing.T) {
	sched := &scriptedScheduler{}
	speaker := &recordingSpeaker{}
	s := newTestStore(echoGenerator{}, sched, speaker, nil)

	s.Send(context.Background(), "你好")

	snap := s.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Origin != domain.OriginUser {
		t.Fatalf("user message must append synchronously: %+v", snap.Messages)
	}
	if !snap.Typing {
		t.Fatalf("typing indicator must be on while the reply is pending")
	}

	sched.run(1) // task 0 is the welcome message

	snap = s.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("expected user + pet message, got %d", len(snap.Messages))
	}
	if snap.Messages[1].Origin != domain.OriginPet || snap.Messages[1].Content != "re:你好" {
		t.Fatalf("unexpected pet message: %+v", snap.Messages[1])
	}
	if snap.Typing {
		t.Fatalf("typing indicator must clear after delivery")
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "re:你好" {
		t.Fatalf("reply should be vocalized: %v", speaker.spoken)
	}
}

func TestRepliesDeliverInIssueOrder(t *testing.T) {
	sched := &scriptedScheduler{}
	s := newTestStore(echoGenerator{}, sched, nil, nil)
	ctx := context.Background()

	s.Send(ctx, "a")
	s.Send(ctx, "b")
	s.Send(ctx, "c")
	if sched.len() != 4 { // welcome + three cycles
		t.Fatalf("expected 4 scheduled tasks, got %d", sched.len())
	}

	// Cycle c completes first; it must be held back.
	sched.run(3)
	snap := s.Snapshot()
	if len(snap.Messages) != 3 {
		t.Fatalf("out-of-order completion must not deliver early: %d messages", len(snap.Messages))
	}
	if !snap.Typing {
		t.Fatalf("typing stays on while earlier cycles are pending")
	}

	// Cycle a completes: a delivers, c still waits on b.
	sched.run(1)
	snap = s.Snapshot()
	if len(snap.Messages) != 4 || snap.Messages[3].Content != "re:a" {
		t.Fatalf("expected re:a delivered, got %+v", snap.Messages)
	}

	// Cycle b completes: b then the buffered c flush together.
	sched.run(2)
	snap = s.Snapshot()
	var replies []string
	for _, m := range snap.Messages {
		if m.Origin == domain.OriginPet {
			replies = append(replies, m.Content)
		}
	}
	want := []string{"re:a", "re:b", "re:c"}
	if len(replies) != len(want) {
		t.Fatalf("expected %d replies, got %v", len(want), replies)
	}
	for i, r := range replies {
		if r != want[i] {
			t.Fatalf("replies out of issue order: %v", replies)
		}
	}
	if snap.Typing {
		t.Fatalf("typing must clear once every cycle settles")
	}

	// Each user message precedes its own reply.
	pos := map[string]int{}
	for i, m := range snap.Messages {
		pos[m.Content] = i
	}
	for _, pair := range [][2]string{{"a", "re:a"}, {"b", "re:b"}, {"c", "re:c"}} {
		if pos[pair[0]] >= pos[pair[1]] {
			t.Fatalf("user message %q must precede its reply: %v", pair[0], snap.Messages)
		}
	}
}

func TestGenerationFailureDegradesSilently(t *testing.T) {
	sched := &scriptedScheduler{}
	s := newTestStore(echoGenerator{err: errors.New("model offline")}, sched, nil, nil)

	s.Send(context.Background(), "你好")
	sched.run(1)

	snap := s.Snapshot()
	if len(snap.Messages) != 1 {
		t.Fatalf("failed generation must not append a pet message: %+v", snap.Messages)
	}
	if snap.Typing {
		t.Fatalf("failed generation must still end the typing window")
	}
}

func TestFailedCycleDoesNotBlockLaterOnes(t *testing.T) {
	sched := &scriptedScheduler{}
	failFirst := &flakyGenerator{failures: 1}
	s := newTestStore(failFirst, sched, nil, nil)
	ctx := context.Background()

	s.Send(ctx, "a")
	s.Send(ctx, "b")
	sched.run(2) // b completes first, buffered
	sched.run(1) // a fails, b must flush

	snap := s.Snapshot()
	var replies []string
	for _, m := range snap.Messages {
		if m.Origin == domain.OriginPet {
			replies = append(replies, m.Content)
		}
	}
	if len(replies) != 1 || replies[0] != "re:b" {
		t.Fatalf("expected only re:b after a's failure, got %v", replies)
	}
	if snap.Typing {
		t.Fatalf("typing must clear after all cycles settle")
	}
}

// flakyGenerator fails the first N calls in issue order (keyed by message).
type flakyGenerator struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (g *flakyGenerator) Generate(_ context.Context, message string, _ []domain.Message, _, _ string) (ai.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if message == "a" && g.failures > 0 {
		g.failures--
		return ai.Reply{}, fmt.Errorf("transient failure")
	}
	return ai.Reply{Text: "re:" + message, Mood: "平静"}, nil
}

func TestClearEmptiesHistoryOnly(t *testing.T) {
	sched := &scriptedScheduler{}
	history := &recordingHistory{}
	s := newTestStore(echoGenerator{}, sched, nil, history)
	ctx := context.Background()

	s.Send(ctx, "你好")
	s.Clear(ctx)

	snap := s.Snapshot()
	if len(snap.Messages) != 0 {
		t.Fatalf("clear must empty the log: %d messages", len(snap.Messages))
	}
	if !snap.Typing {
		t.Fatalf("clear must not reset the typing flag of the in-flight cycle")
	}
	if history.cleared != 1 {
		t.Fatalf("archive should be cleared once, got %d", history.cleared)
	}
}

func TestMessagesAreArchived(t *testing.T) {
	sched := &scriptedScheduler{}
	history := &recordingHistory{}
	s := newTestStore(echoGenerator{}, sched, nil, history)

	s.Send(context.Background(), "你好")
	sched.run(1)

	history.mu.Lock()
	defer history.mu.Unlock()
	if len(history.appended) != 2 {
		t.Fatalf("expected user + pet message archived, got %d", len(history.appended))
	}
	if history.appended[0].Origin != domain.OriginUser || history.appended[1].Origin != domain.OriginPet {
		t.Fatalf("archive order wrong: %+v", history.appended)
	}
}

func TestTriggerInteraction(t *testing.T) {
	sched := &scriptedScheduler{}
	s := newTestStore(echoGenerator{}, sched, nil, nil)

	s.TriggerInteraction(context.Background(), domain.ActionPlay)

	snap := s.Snapshot()
	if len(snap.Messages) != 1 || snap.Messages[0].Content != "来玩球吧！" {
		t.Fatalf("interaction should send its canned message: %+v", snap.Messages)
	}
	if !snap.Typing {
		t.Fatalf("interaction goes through the normal reply cycle")
	}
}

func TestSendPassesHistoryWithoutNewMessage(t *testing.T) {
	var prompts [][]struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		prompts = append(prompts, req.Messages)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "好耶！我们来玩吧！"}},
			},
		})
	}))
	defer srv.Close()

	sched := &scriptedScheduler{}
	s := newTestStore(ai.NewOpenAIGenerator(srv.URL, "", "gpt-3.5-turbo"), sched, nil, nil)
	ctx := context.Background()

	s.Send(ctx, "你好")
	sched.run(1)
	s.Send(ctx, "想玩球")
	sched.run(2)

	if len(prompts) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(prompts))
	}

	// First send has no prior history: system prompt plus the one user turn.
	first := prompts[0]
	if len(first) != 2 || first[1].Role != "user" || first[1].Content != "你好" {
		t.Fatalf("unexpected first prompt: %+v", first)
	}

	// Second send: the new message closes the prompt exactly once, with the
	// prior user turn and pet reply ahead of it.
	second := prompts[1]
	var count int
	for _, m := range second {
		if m.Content == "想玩球" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("new message must appear exactly once in the prompt, got %d: %+v", count, second)
	}
	if last := second[len(second)-1]; last.Role != "user" || last.Content != "想玩球" {
		t.Fatalf("new message must be the closing turn: %+v", second)
	}
	want := []struct{ role, content string }{
		{"user", "你好"},
		{"assistant", "好耶！我们来玩吧！"},
	}
	if len(second) != len(want)+2 {
		t.Fatalf("unexpected prompt length: %+v", second)
	}
	for i, w := range want {
		if got := second[i+1]; got.Role != w.role || got.Content != w.content {
			t.Fatalf("history turn %d mismatch: got %+v want %+v", i, got, w)
		}
	}
}

func TestLocalGeneratorEndToEnd(t *testing.T) {
	sched := &scriptedScheduler{}
	speaker := &recordingSpeaker{}
	s := NewConversationStore(ConversationConfig{
		Generator: ai.NewLocalGenerator(ai.WithRand(rand.New(rand.NewSource(7)))),
		Pet:       domain.SamplePets()[0],
		Speaker:   speaker,
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(7)),
	})

	s.Send(context.Background(), "你好")
	sched.run(1)

	snap := s.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("expected user + pet message, got %d", len(snap.Messages))
	}
	reply := snap.Messages[1]
	if reply.Origin != domain.OriginPet || reply.Content == "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Mood != ai.DeriveMood(reply.Content) {
		t.Fatalf("reply mood must derive from its own text: %+v", reply)
	}
	if len(speaker.spoken) != 1 {
		t.Fatalf("reply should be spoken: %v", speaker.spoken)
	}
}
