package store

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"furrykids/internal/schedule"
	"furrykids/pkg/ai"
	"furrykids/pkg/domain"
)

const (
	welcomeText = "你好！很高兴见到你！今天想和我聊点什么呢？"
	welcomeMood = "开心"

	defaultMinReplyDelay = 1 * time.Second
	defaultMaxReplyDelay = 3 * time.Second
	defaultWelcomeDelay  = 500 * time.Millisecond
)

// Speaker is the slice of the speech bridge the conversation store uses.
type Speaker interface {
	Speak(text string)
	Stop()
	IsSpeaking() bool
}

// ConversationSnapshot is the chat state consumed by the UI layer.
type ConversationSnapshot struct {
	Messages []domain.Message
	Typing   bool
	Speaking bool
}

// ConversationConfig wires a ConversationStore.
type ConversationConfig struct {
	Generator ai.ReplyGenerator
	Pet       domain.Pet
	// Speaker vocalizes pet replies. Nil disables speech.
	Speaker Speaker
	// Scheduler defaults to the wall clock. Tests inject a fake so the
	// reply delay runs synchronously.
	Scheduler schedule.Scheduler
	// History archives every appended message. Nil means no archive.
	History History
	Logger  *slog.Logger
	// MinReplyDelay/MaxReplyDelay bound the simulated typing latency.
	// Defaults: 1s and 3s.
	MinReplyDelay time.Duration
	MaxReplyDelay time.Duration
	// WelcomeDelay defers the one-time welcome message. Default 500ms.
	WelcomeDelay time.Duration
	Rand         *rand.Rand
}

// ConversationStore owns the ordered message log and orchestrates the
// send → typing delay → reply → speech cycle. Replies land in the order
// their sends were issued even when the randomized delays complete out
// of order.
type ConversationStore struct {
	gen     ai.ReplyGenerator
	speaker Speaker
	sched   schedule.Scheduler
	history History
	logger  *slog.Logger
	obs     observers

	petID          uuid.UUID
	petName        string
	petPersonality string

	minDelay time.Duration
	maxDelay time.Duration

	mu          sync.Mutex
	rng         *rand.Rand
	msgs        []domain.Message
	pending     int
	nextIssue   uint64
	nextDeliver uint64
	completed   map[uint64]cycleResult
}

type cycleResult struct {
	reply ai.Reply
	err   error
}

// NewConversationStore builds the store and schedules the one-time
// welcome message tied to its lifetime.
func NewConversationStore(cfg ConversationConfig) *ConversationStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = schedule.Real()
	}
	history := cfg.History
	if history == nil {
		history = NopHistory{}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	minDelay := cfg.MinReplyDelay
	if minDelay <= 0 {
		minDelay = defaultMinReplyDelay
	}
	maxDelay := cfg.MaxReplyDelay
	if maxDelay < minDelay {
		maxDelay = defaultMaxReplyDelay
	}
	welcomeDelay := cfg.WelcomeDelay
	if welcomeDelay <= 0 {
		welcomeDelay = defaultWelcomeDelay
	}

	s := &ConversationStore{
		gen:            cfg.Generator,
		speaker:        cfg.Speaker,
		sched:          sched,
		history:        history,
		logger:         logger,
		petID:          cfg.Pet.ID,
		petName:        cfg.Pet.Name,
		petPersonality: cfg.Pet.PersonalityText(),
		minDelay:       minDelay,
		maxDelay:       maxDelay,
		rng:            rng,
		completed:      make(map[uint64]cycleResult),
	}
	s.sched.AfterFunc(welcomeDelay, func() {
		s.Receive(context.Background(), welcomeText, welcomeMood)
	})
	return s
}

// Subscribe registers a callback invoked synchronously after each commit.
func (s *ConversationStore) Subscribe(fn func()) {
	s.obs.subscribe(fn)
}

// Snapshot returns a copy of the current conversation state.
func (s *ConversationStore) Snapshot() ConversationSnapshot {
	s.mu.Lock()
	msgs := make([]domain.Message, len(s.msgs))
	copy(msgs, s.msgs)
	typing := s.pending > 0
	s.mu.Unlock()
	speaking := false
	if s.speaker != nil {
		speaking = s.speaker.IsSpeaking()
	}
	return ConversationSnapshot{Messages: msgs, Typing: typing, Speaking: speaking}
}

// Send appends the user's message and schedules the pet's reply after a
// randomized delay. Empty and whitespace-only input is a silent no-op.
func (s *ConversationStore) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	userMsg := domain.NewMessage(text, domain.OriginUser, "")

	s.mu.Lock()
	// Snapshot the history before the append: generators take the new
	// message as a separate argument and must not see it twice.
	history := make([]domain.Message, len(s.msgs))
	copy(history, s.msgs)
	s.msgs = append(s.msgs, userMsg)
	seq := s.nextIssue
	s.nextIssue++
	s.pending++
	delay := s.replyDelayLocked()
	s.mu.Unlock()
	s.obs.notify()

	s.archive(ctx, userMsg)

	s.sched.AfterFunc(delay, func() {
		reply, err := s.gen.Generate(ctx, text, history, s.petName, s.petPersonality)
		s.complete(ctx, seq, reply, err)
	})
}

// TriggerInteraction routes a quick action's canned message through the
// normal send path.
func (s *ConversationStore) TriggerInteraction(ctx context.Context, action domain.InteractionAction) {
	s.Send(ctx, action.UserMessage())
}

// Receive appends a pet-originated message directly, bypassing the reply
// cycle. The welcome message arrives through here.
func (s *ConversationStore) Receive(ctx context.Context, content, mood string) {
	msg := domain.NewMessage(content, domain.OriginPet, mood)
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.obs.notify()
	s.archive(ctx, msg)
}

// Clear empties the message history. Typing and speaking flags are left
// alone; they belong to whatever cycle or utterance is still running.
func (s *ConversationStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.msgs = nil
	s.mu.Unlock()
	s.obs.notify()
	if err := s.history.Clear(ctx, s.petID); err != nil {
		s.logger.Warn("clear history archive", "err", err)
	}
}

// complete buffers a finished cycle and flushes every cycle that is now
// deliverable in issue order. A failed cycle ends its typing window
// without appending anything.
func (s *ConversationStore) complete(ctx context.Context, seq uint64, reply ai.Reply, err error) {
	s.mu.Lock()
	s.completed[seq] = cycleResult{reply: reply, err: err}

	var delivered []ai.Reply
	for {
		result, ok := s.completed[s.nextDeliver]
		if !ok {
			break
		}
		delete(s.completed, s.nextDeliver)
		s.nextDeliver++
		s.pending--
		if result.err != nil {
			continue
		}
		s.msgs = append(s.msgs, domain.NewMessage(result.reply.Text, domain.OriginPet, result.reply.Mood))
		delivered = append(delivered, result.reply)
	}
	var archived []domain.Message
	if len(delivered) > 0 {
		archived = make([]domain.Message, len(delivered))
		copy(archived, s.msgs[len(s.msgs)-len(delivered):])
	}
	s.mu.Unlock()
	s.obs.notify()

	if err != nil {
		s.logger.Warn("reply generation failed", "seq", seq, "err", err)
	}
	for i, reply := range delivered {
		s.archive(ctx, archived[i])
		if s.speaker != nil {
			s.speaker.Speak(reply.Text)
		}
	}
}

func (s *ConversationStore) archive(ctx context.Context, msg domain.Message) {
	if err := s.history.Append(ctx, s.petID, msg); err != nil {
		s.logger.Warn("archive message", "err", err)
	}
}

func (s *ConversationStore) replyDelayLocked() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	return s.minDelay + time.Duration(s.rng.Int63n(int64(s.maxDelay-s.minDelay)))
}
