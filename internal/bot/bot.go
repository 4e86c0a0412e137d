// Package bot holds the webhook orchestration pipeline: one inbound
// Telegram update in, an updated conversation record, a resolved
// intent, and possibly a calendar event out.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/calendar"
	"github.com/xaenox/calbot/internal/models"
	"github.com/xaenox/calbot/internal/storage"
	"github.com/xaenox/calbot/internal/timeref"
)

const greeting = "Hi! I'm your calendar assistant.\n\n" +
	"Send me event information — invitations, save the dates, or just describe an event — and I'll add it to your Google Calendar.\n\n" +
	"You can send text, forward messages, or even send photos of invitations!"

const (
	processingNotice   = "Processing your image..."
	fallbackReply      = "Sorry, I had trouble understanding that. Please try again."
	unprocessableImage = "[User sent an image but it could not be processed]"
)

// Messenger sends replies and fetches user-uploaded files from the
// chat platform.
type Messenger interface {
	Send(chatID int64, text string) error
	FileDirectURL(fileID string) (string, error)
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// FileStore persists an image blob and returns its stable URL.
type FileStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// Extractor runs vision extraction against a stored image URL.
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (*models.ImageData, error)
}

// Resolver turns the conversation into a typed intent.
type Resolver interface {
	Resolve(ctx context.Context, ref timeref.Reference, history []models.Turn, imageJSON string) (*models.Intent, error)
}

// EventCreator materializes an event with the calendar provider.
type EventCreator interface {
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.CreatedEvent, error)
}

type Bot struct {
	storage   storage.Storage
	messenger Messenger
	files     FileStore
	extractor Extractor
	resolver  Resolver
	events    EventCreator
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func New(
	store storage.Storage,
	messenger Messenger,
	files FileStore,
	extractor Extractor,
	resolver Resolver,
	events EventCreator,
	location *time.Location,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		storage:   store,
		messenger: messenger,
		files:     files,
		extractor: extractor,
		resolver:  resolver,
		events:    events,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// HandleUpdate processes one webhook delivery. Updates without a
// usable message are acknowledged as no-ops. A returned error means
// the request failed before a reply was composed; conversation state
// is only saved after the reply went out.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil {
		return nil
	}

	hasText := message.Text != ""
	hasPhoto := len(message.Photo) > 0
	hasDocument := message.Document != nil && strings.HasPrefix(message.Document.MimeType, "image/")

	if !hasText && !hasPhoto && !hasDocument {
		return nil
	}

	chatID := message.Chat.ID
	userText := message.Text
	if userText == "" {
		userText = message.Caption
	}

	if strings.TrimSpace(userText) == "/start" {
		if err := b.messenger.Send(chatID, greeting); err != nil {
			return fmt.Errorf("failed to send greeting: %w", err)
		}
		return nil
	}

	var imageJSON string
	if hasPhoto || hasDocument {
		userText, imageJSON = b.processImage(ctx, message, userText)
	}

	chat, err := b.storage.GetOrCreateChat(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		return fmt.Errorf("failed to load chat state: %w", err)
	}
	chat.Append(models.RoleUser, userText)

	ref := timeref.New(b.now().In(b.location))

	intent, err := b.resolver.Resolve(ctx, ref, chat.Messages, imageJSON)
	if err != nil {
		// Model trouble degrades to an apology instead of failing the
		// whole request.
		b.logger.Error("failed to resolve intent",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		intent = &models.Intent{Action: models.ActionChat, Message: fallbackReply}
	}

	reply := intent.Message
	if intent.WantsEvent() {
		reply = b.materialize(ctx, intent.Event, reply)
	}

	if err := b.messenger.Send(chatID, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	chat.Append(models.RoleAssistant, reply)
	if intent.Action == models.ActionAskClarification {
		chat.Status = models.StatusAwaitingClarification
	} else {
		chat.Status = models.StatusIdle
	}
	if err := b.storage.SaveChat(ctx, chat); err != nil {
		return fmt.Errorf("failed to save chat state: %w", err)
	}

	return nil
}

// processImage runs the ingestion pipeline and merges the outcome
// into the outgoing user text. Every failure degrades; supplied text
// is never discarded.
func (b *Bot) processImage(ctx context.Context, message *tgbotapi.Message, userText string) (string, string) {
	chatID := message.Chat.ID

	// Best-effort notice; the pipeline continues regardless.
	if err := b.messenger.Send(chatID, processingNotice); err != nil {
		b.logger.Warn("failed to send processing notice",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}

	var fileID string
	if len(message.Photo) > 0 {
		// Telegram orders photo variants by size; the last one is the
		// highest resolution.
		fileID = message.Photo[len(message.Photo)-1].FileID
	} else {
		fileID = message.Document.FileID
	}

	var imageJSON string
	if data := b.extractImage(ctx, chatID, fileID); data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			imageJSON = string(raw)
		}
	}

	switch {
	case userText == "" && imageJSON != "":
		userText = fmt.Sprintf("[User sent an image. Extracted content: %s]", imageJSON)
	case userText == "":
		userText = unprocessableImage
	case imageJSON != "":
		userText = fmt.Sprintf("%s\n[Image content: %s]", userText, imageJSON)
	}

	return userText, imageJSON
}

func (b *Bot) extractImage(ctx context.Context, chatID int64, fileID string) *models.ImageData {
	url, err := b.messenger.FileDirectURL(fileID)
	if err != nil {
		b.logger.Error("failed to resolve image file",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		return nil
	}

	data, contentType, err := b.messenger.Download(ctx, url)
	if err != nil {
		b.logger.Error("failed to download image",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		return nil
	}

	fileURL, err := b.files.Save(ctx, data, contentType)
	if err != nil {
		b.logger.Error("failed to store image",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		return nil
	}

	extracted, err := b.extractor.Extract(ctx, fileURL)
	if err != nil {
		b.logger.Error("failed to extract image data",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		return nil
	}

	return extracted
}

// materialize submits the event and appends the outcome to the reply.
// Calendar failures are non-fatal to the conversational turn.
func (b *Bot) materialize(ctx context.Context, event *models.EventDraft, reply string) string {
	created, err := b.events.CreateEvent(ctx, calendar.EventInput{
		Title:         event.Title,
		StartDatetime: event.StartDatetime,
		EndDatetime:   event.EndDatetime,
		Location:      event.Location,
		Description:   event.Description,
	})
	if err != nil {
		b.logger.Error("calendar creation error", zap.Error(err))
		var apiErr *calendar.APIError
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("I understood the event details but couldn't create it in Google Calendar. Error: %s", apiErr.Body)
		}
		return fmt.Sprintf("I understood the event but hit an error creating it: %v", err)
	}

	if created.HTMLLink != "" {
		return fmt.Sprintf("%s\n\n📅 Event created!\n%s", reply, created.HTMLLink)
	}
	return reply + "\n\n📅 Event created!"
}
