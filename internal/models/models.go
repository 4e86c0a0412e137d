package models

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message exchanged within a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatStatus tracks whether the assistant is waiting on the user.
type ChatStatus string

const (
	StatusIdle                  ChatStatus = "idle"
	StatusAwaitingClarification ChatStatus = "awaiting_clarification"
)

// HistoryLimit bounds how many turns are kept per chat. Oldest turns
// are evicted first.
const HistoryLimit = 10

// Chat is the persistent conversation record for one Telegram chat.
type Chat struct {
	ChatID   string     `json:"chat_id"`
	Messages []Turn     `json:"messages"`
	Status   ChatStatus `json:"status"`
}

// Append adds a turn and trims the history to the most recent
// HistoryLimit entries.
func (c *Chat) Append(role Role, content string) {
	c.Messages = append(c.Messages, Turn{Role: role, Content: content})
	if len(c.Messages) > HistoryLimit {
		c.Messages = c.Messages[len(c.Messages)-HistoryLimit:]
	}
}

// ImageData holds event-candidate fields extracted from an image by
// the vision model. Nothing here is guaranteed to be populated.
type ImageData struct {
	EventName   string `json:"event_name,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	AllText     string `json:"all_text,omitempty"`
}

// IntentAction is the assistant's decision for a user message.
type IntentAction string

const (
	ActionCreateEvent      IntentAction = "create_event"
	ActionAskClarification IntentAction = "ask_clarification"
	ActionChat             IntentAction = "chat"
)

// Intent is the model's schema-constrained decision for one turn.
type Intent struct {
	Action  IntentAction `json:"action"`
	Message string       `json:"message"`
	Event   *EventDraft  `json:"event,omitempty"`
}

// EventDraft carries the event fields the model extracted. Datetimes
// are ISO 8601 strings in the configured timezone.
type EventDraft struct {
	Title         string `json:"title"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
}

// WantsEvent reports whether the intent carries enough to attempt
// calendar materialization: create_event action plus a title and a
// start datetime.
func (i *Intent) WantsEvent() bool {
	return i.Action == ActionCreateEvent &&
		i.Event != nil &&
		i.Event.Title != "" &&
		i.Event.StartDatetime != ""
}

// File is an image blob persisted so the vision service can fetch it
// through a stable URL.
type File struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
