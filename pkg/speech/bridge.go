package speech

import (
	"log/slog"
	"sync"
)

// Bridge serializes utterances over a Synthesizer: starting a new one
// cancels the active one first, so at most one plays at a time. There is
// no queueing.
type Bridge struct {
	synth  Synthesizer
	locale string
	logger *slog.Logger

	mu      sync.Mutex
	current Utterance
	gen     uint64
	playing bool
}

// NewBridge wires a bridge to a synthesizer with a preferred voice locale.
func NewBridge(synth Synthesizer, locale string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{synth: synth, locale: locale, logger: logger}
}

// Speak cancels any active utterance and starts the new one. Failures
// degrade silently: the reply is already on screen, audio is best effort.
func (b *Bridge) Speak(text string) {
	clean := CleanText(text)
	voice := PickVoice(b.synth.Voices(), b.locale)

	b.mu.Lock()
	if b.current != nil {
		b.current.Cancel()
		b.current = nil
	}
	b.gen++
	gen := b.gen
	done := func() {
		b.mu.Lock()
		// A cancelled utterance's completion must not clear the flag
		// for its successor.
		if gen == b.gen {
			b.playing = false
			b.current = nil
		}
		b.mu.Unlock()
	}
	utterance, err := b.synth.Speak(clean, voice, done)
	if err != nil {
		b.playing = false
		b.mu.Unlock()
		b.logger.Warn("speech synthesis failed", "err", err)
		return
	}
	b.current = utterance
	b.playing = true
	b.mu.Unlock()
}

// Stop force-cancels the active utterance.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		b.current.Cancel()
		b.current = nil
	}
	b.gen++
	b.playing = false
}

// IsSpeaking reports whether an utterance is active.
func (b *Bridge) IsSpeaking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}
