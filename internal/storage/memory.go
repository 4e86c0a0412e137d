package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/calbot/internal/models"
)

// MemoryStorage is an in-process Storage used for tests and the
// use_in_memory configuration flag.
type MemoryStorage struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
	files map[string]*models.File
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		chats: make(map[string]*models.Chat),
		files: make(map[string]*models.File),
	}
}

func (s *MemoryStorage) GetOrCreateChat(ctx context.Context, chatID string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chat, exists := s.chats[chatID]; exists {
		return cloneChat(chat), nil
	}

	chat := &models.Chat{
		ChatID:   chatID,
		Messages: []models.Turn{},
		Status:   models.StatusIdle,
	}
	s.chats[chatID] = chat
	return cloneChat(chat), nil
}

func (s *MemoryStorage) SaveChat(ctx context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[chat.ChatID]; !exists {
		return ErrNotFound
	}
	s.chats[chat.ChatID] = cloneChat(chat)
	return nil
}

func (s *MemoryStorage) SaveFile(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *file
	stored.CreatedAt = time.Now()
	s.files[file.ID] = &stored
	file.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryStorage) GetFile(ctx context.Context, id string) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if file, exists := s.files[id]; exists {
		stored := *file
		return &stored, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// cloneChat keeps callers from mutating the stored record through the
// returned pointer, matching the replace-on-save database semantics.
func cloneChat(chat *models.Chat) *models.Chat {
	clone := &models.Chat{
		ChatID:   chat.ChatID,
		Messages: make([]models.Turn, len(chat.Messages)),
		Status:   chat.Status,
	}
	copy(clone.Messages, chat.Messages)
	return clone
}
