// Package speech drives text-to-speech playback for pet replies. The
// platform engine sits behind the Synthesizer boundary; the bridge owns
// the at-most-one-active-utterance rule and text cleanup.
package speech

import (
	"strings"
	"unicode"
)

// Voice identifies one synthesizer voice, e.g. {Name: "婷婷", Locale: "zh-CN"}.
type Voice struct {
	Name   string
	Locale string
}

// Utterance is an in-flight playback handle.
type Utterance interface {
	Cancel()
}

// Synthesizer is the platform text-to-speech boundary. done fires on
// natural completion only; cancellation goes through Utterance.Cancel.
// done must not be invoked synchronously from within Speak.
type Synthesizer interface {
	Voices() []Voice
	Speak(text string, voice Voice, done func()) (Utterance, error)
}

// PickVoice prefers an exact locale match, then any voice in the same
// language family, then the synthesizer default (zero Voice).
func PickVoice(voices []Voice, locale string) Voice {
	for _, v := range voices {
		if v.Locale == locale {
			return v
		}
	}
	lang, _, _ := strings.Cut(locale, "-")
	if lang != "" {
		for _, v := range voices {
			if strings.HasPrefix(v.Locale, lang) {
				return v
			}
		}
	}
	return Voice{}
}

// CleanText strips decorative glyphs the engine cannot pronounce:
// emoji, the fullwidth wave dash, and bracket pairs. An all-decoration
// input falls back to a spoken placeholder.
func CleanText(text string) string {
	var b strings.Builder
	for _, r := range text {
		if isDecorative(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "空消息"
	}
	return out
}

func isDecorative(r rune) bool {
	switch r {
	case '～', '(', ')', '（', '）', '[', ']', '{', '}', '【', '】':
		return true
	case '️', '‍': // variation selector, zero-width joiner
		return true
	}
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoji and pictographs
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case unicode.Is(unicode.Sk, r) && r > 0x2000:
		return true
	}
	return false
}
