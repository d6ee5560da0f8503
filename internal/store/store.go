// Package store persists conversation transcripts.
package store

import (
	"context"

	"github.com/s376930/Chat-Arena/internal/domain"
)

// TranscriptStore is the durable sink for conversation records.
type TranscriptStore interface {
	// Persist writes the conversation's current state, inserting the
	// record if new and appending any messages not yet stored. Safe to
	// call repeatedly with a growing transcript.
	Persist(ctx context.Context, conv *domain.Conversation) error

	// Finalize persists the conversation and marks it ended.
	Finalize(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves a stored conversation by session id. Returns
	// (nil, nil) when no such session exists.
	Load(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// ListSessions returns the stored session ids, most recent first.
	ListSessions(ctx context.Context, limit int) ([]string, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
