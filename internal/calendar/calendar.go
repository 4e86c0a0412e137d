// Package calendar materializes resolved event intents as Google
// Calendar entries.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// EventInput carries the fields needed to create an event. Title and
// StartDatetime are required; a missing EndDatetime defaults to one
// hour after start. A missing Timezone falls back to the configured
// default.
type EventInput struct {
	Title         string
	StartDatetime string
	EndDatetime   string
	Location      string
	Description   string
	Timezone      string
}

// EventTime mirrors the provider's start/end representation.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CreatedEvent is the confirmation returned after a successful insert.
type CreatedEvent struct {
	ID       string    `json:"event_id"`
	HTMLLink string    `json:"html_link"`
	Summary  string    `json:"summary"`
	Start    EventTime `json:"start"`
	End      EventTime `json:"end"`
}

// APIError carries a provider failure through to the caller with the
// raw error text; event creation is fire-and-forget and never retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Google Calendar API error (status %d): %s", e.StatusCode, e.Body)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	Timezone     string
}

// Service wraps the Google Calendar API for a single configured
// calendar, authenticating through the OAuth refresh-token exchange.
type Service struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

func NewService(ctx context.Context, cfg Config) (*Service, error) {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Service{
		svc:        svc,
		calendarID: calendarID,
		timezone:   cfg.Timezone,
	}, nil
}

// CreateEvent submits the event and returns the provider confirmation.
// Provider rejections surface as *APIError so callers can pass the
// status and text through.
func (s *Service) CreateEvent(ctx context.Context, input EventInput) (*CreatedEvent, error) {
	tz := input.Timezone
	if tz == "" {
		tz = s.timezone
	}

	end := input.EndDatetime
	if end == "" {
		var err error
		end, err = DefaultEnd(input.StartDatetime)
		if err != nil {
			return nil, fmt.Errorf("failed to derive end time: %w", err)
		}
	}

	event := &gcal.Event{
		Summary:     input.Title,
		Location:    input.Location,
		Description: input.Description,
		Start:       &gcal.EventDateTime{DateTime: input.StartDatetime, TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: end, TimeZone: tz},
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			body := gerr.Body
			if body == "" {
				body = gerr.Message
			}
			return nil, &APIError{StatusCode: gerr.Code, Body: body}
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := &CreatedEvent{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
		Summary:  created.Summary,
	}
	if created.Start != nil {
		result.Start = EventTime{DateTime: created.Start.DateTime, TimeZone: created.Start.TimeZone}
	}
	if created.End != nil {
		result.End = EventTime{DateTime: created.End.DateTime, TimeZone: created.End.TimeZone}
	}

	return result, nil
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// DefaultEnd returns the datetime one hour after start, formatted the
// same way the start was supplied.
func DefaultEnd(start string) (string, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, start); err == nil {
			return t.Add(time.Hour).Format(layout), nil
		}
	}
	return "", fmt.Errorf("unable to parse start datetime: %s", start)
}
