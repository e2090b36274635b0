// Package ai produces the pet's conversational replies. Two strategies
// implement ReplyGenerator: a local keyword table for offline use and an
// OpenAI-compatible chat-completions client. The strategy is chosen at
// configuration time, not per call.
package ai

import (
	"context"

	"furrykids/pkg/domain"
)

// Reply is one generated pet response. Mood is derived from the reply
// text itself, not from the input.
type Reply struct {
	Text    string
	Mood    string
	Actions []string
}

// ReplyGenerator maps a user message plus recent history to a pet reply.
// history holds prior turns only; message must not appear in it.
type ReplyGenerator interface {
	Generate(ctx context.Context, message string, history []domain.Message, petName, personality string) (Reply, error)
}
