package store

import (
	"context"

	"github.com/google/uuid"

	"furrykids/pkg/domain"
)

// History archives conversation messages per pet so a chat survives the
// in-memory store. Archive failures never block message delivery; the
// conversation store logs and moves on.
type History interface {
	Append(ctx context.Context, petID uuid.UUID, msg domain.Message) error
	Recent(ctx context.Context, petID uuid.UUID, n int) ([]domain.Message, error)
	Clear(ctx context.Context, petID uuid.UUID) error
}

// NopHistory discards everything. It is the default archive.
type NopHistory struct{}

func (NopHistory) Append(context.Context, uuid.UUID, domain.Message) error { return nil }

func (NopHistory) Recent(context.Context, uuid.UUID, int) ([]domain.Message, error) {
	return nil, nil
}

func (NopHistory) Clear(context.Context, uuid.UUID) error { return nil }
