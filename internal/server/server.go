// Package server exposes the HTTP surface: the Telegram webhook, the
// direct calendar-creation endpoint, stored file serving, and health.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/calendar"
	"github.com/xaenox/calbot/internal/storage"
)

// UpdateHandler processes one inbound Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// EventCreator materializes an event with the calendar provider.
type EventCreator interface {
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.CreatedEvent, error)
}

type Server struct {
	botToken string
	bot      UpdateHandler
	events   EventCreator
	storage  storage.Storage
	logger   *zap.Logger
}

func New(botToken string, bot UpdateHandler, events EventCreator, store storage.Storage, logger *zap.Logger) *Server {
	return &Server{
		botToken: botToken,
		bot:      bot,
		events:   events,
		storage:  store,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/webhook/telegram", s.handleWebhook)
	r.Post("/events", s.handleCreateEvent)
	r.Get("/files/{id}", s.handleGetFile)

	return r
}
