package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/calbot/internal/models"
)

func TestGetOrCreateChatCreatesIdleRecord(t *testing.T) {
	s := NewMemoryStorage()

	chat, err := s.GetOrCreateChat(context.Background(), "100")
	require.NoError(t, err)

	assert.Equal(t, "100", chat.ChatID)
	assert.Empty(t, chat.Messages)
	assert.Equal(t, models.StatusIdle, chat.Status)
}

func TestSaveChatRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	chat, err := s.GetOrCreateChat(ctx, "100")
	require.NoError(t, err)

	chat.Append(models.RoleUser, "dentist tomorrow at 3pm")
	chat.Append(models.RoleAssistant, "Added!")
	chat.Status = models.StatusAwaitingClarification
	require.NoError(t, s.SaveChat(ctx, chat))

	loaded, err := s.GetOrCreateChat(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, chat.Messages, loaded.Messages)
	assert.Equal(t, models.StatusAwaitingClarification, loaded.Status)
}

func TestSaveChatUnknownChat(t *testing.T) {
	s := NewMemoryStorage()

	err := s.SaveChat(context.Background(), &models.Chat{ChatID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateChatConcurrent(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chat, err := s.GetOrCreateChat(ctx, "race")
			assert.NoError(t, err)
			assert.Equal(t, "race", chat.ChatID)
		}()
	}
	wg.Wait()

	// Exactly one record was created.
	assert.Len(t, s.chats, 1)
}

func TestStoredChatNotAliased(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	chat, err := s.GetOrCreateChat(ctx, "100")
	require.NoError(t, err)
	chat.Append(models.RoleUser, "unsaved turn")

	loaded, err := s.GetOrCreateChat(ctx, "100")
	require.NoError(t, err)
	assert.Empty(t, loaded.Messages, "mutations must not leak without SaveChat")
}

func TestFileRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	file := &models.File{ID: "abc", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	require.NoError(t, s.SaveFile(ctx, file))
	assert.False(t, file.CreatedAt.IsZero())

	loaded, err := s.GetFile(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", loaded.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, loaded.Data)

	_, err = s.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
