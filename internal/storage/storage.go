package storage

import (
	"context"
	"errors"

	"github.com/xaenox/calbot/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage persists per-chat conversation state and uploaded image
// blobs. All cross-request state lives here; request handlers keep no
// shared in-process memory.
type Storage interface {
	// GetOrCreateChat returns the conversation record for chatID,
	// creating an empty idle record on first contact. Safe to call
	// concurrently for the same chatID.
	GetOrCreateChat(ctx context.Context, chatID string) (*models.Chat, error)

	// SaveChat replaces the stored messages and status for the chat.
	SaveChat(ctx context.Context, chat *models.Chat) error

	SaveFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id string) (*models.File, error)

	Ping(ctx context.Context) error
	Close() error
}
