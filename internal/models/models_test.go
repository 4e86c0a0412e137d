package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatAppendTrimsHistory(t *testing.T) {
	chat := &Chat{ChatID: "42"}

	for i := 0; i < 25; i++ {
		chat.Append(RoleUser, fmt.Sprintf("message %d", i))
	}

	assert.Len(t, chat.Messages, HistoryLimit)
	// Oldest entries evicted first: the window holds messages 15..24.
	assert.Equal(t, "message 15", chat.Messages[0].Content)
	assert.Equal(t, "message 24", chat.Messages[HistoryLimit-1].Content)
}

func TestChatAppendKeepsOrder(t *testing.T) {
	chat := &Chat{ChatID: "42"}
	chat.Append(RoleUser, "hello")
	chat.Append(RoleAssistant, "hi there")

	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}, chat.Messages)
}

func TestIntentWantsEvent(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   bool
	}{
		{
			name: "complete event",
			intent: Intent{
				Action: ActionCreateEvent,
				Event:  &EventDraft{Title: "Dentist", StartDatetime: "2026-09-02T15:00:00"},
			},
			want: true,
		},
		{
			name:   "create_event without event payload",
			intent: Intent{Action: ActionCreateEvent},
			want:   false,
		},
		{
			name: "missing title",
			intent: Intent{
				Action: ActionCreateEvent,
				Event:  &EventDraft{StartDatetime: "2026-09-02T15:00:00"},
			},
			want: false,
		},
		{
			name: "missing start datetime",
			intent: Intent{
				Action: ActionCreateEvent,
				Event:  &EventDraft{Title: "Dentist"},
			},
			want: false,
		},
		{
			name: "chat action with event payload",
			intent: Intent{
				Action: ActionChat,
				Event:  &EventDraft{Title: "Dentist", StartDatetime: "2026-09-02T15:00:00"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.intent.WantsEvent())
		})
	}
}
