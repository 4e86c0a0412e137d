package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/calendar"
	"github.com/xaenox/calbot/internal/storage"
)

// handleWebhook is the single error boundary for the conversation
// pipeline: handled and ignored updates both acknowledge with
// {ok:true}; anything unexpected becomes a 500 carrying the error
// text, and conversation state is left untouched by the failed turn.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.botToken == "" {
		s.logger.Error("telegram bot token not configured")
		writeError(w, http.StatusInternalServerError, "Bot token not configured")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Error("failed to decode webhook body", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.bot.HandleUpdate(r.Context(), update); err != nil {
		s.logger.Error("webhook error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type createEventRequest struct {
	Title         string `json:"title"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
}

type createEventResponse struct {
	Success bool               `json:"success"`
	EventID string             `json:"event_id"`
	Link    string             `json:"html_link"`
	Summary string             `json:"summary"`
	Start   calendar.EventTime `json:"start"`
	End     calendar.EventTime `json:"end"`
}

// handleCreateEvent is the direct calendar-creation endpoint. Note
// that identical repeated requests create distinct events each time;
// the provider does no dedup and neither do we.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" || req.StartDatetime == "" {
		writeError(w, http.StatusBadRequest, "title and start_datetime are required")
		return
	}

	created, err := s.events.CreateEvent(r.Context(), calendar.EventInput{
		Title:         req.Title,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Location:      req.Location,
		Description:   req.Description,
		Timezone:      req.Timezone,
	})
	if err != nil {
		s.logger.Error("calendar creation error", zap.Error(err))
		var apiErr *calendar.APIError
		if errors.As(err, &apiErr) {
			writeError(w, apiErr.StatusCode, "Google Calendar API error: "+apiErr.Body)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, createEventResponse{
		Success: true,
		EventID: created.ID,
		Link:    created.HTMLLink,
		Summary: created.Summary,
		Start:   created.Start,
		End:     created.End,
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, err := s.storage.GetFile(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load file", zap.Error(err), zap.String("file_id", id))
		writeError(w, http.StatusInternalServerError, "failed to load file")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
