package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/calbot/internal/models"
	"github.com/xaenox/calbot/internal/timeref"
)

func testReference(t *testing.T) timeref.Reference {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	return timeref.New(time.Date(2026, time.September, 9, 14, 5, 0, 0, loc))
}

func TestBuildPromptContainsTimeAnchor(t *testing.T) {
	history := []models.Turn{{Role: models.RoleUser, Content: "dentist tomorrow at 3pm"}}

	prompt := BuildPrompt(testReference(t), history, "")

	assert.Contains(t, prompt, "Today is Wednesday, 2026-09-09 (current time: 14:05)")
	assert.Contains(t, prompt, "Thu=2026-09-10")
	// Today's own weekday points one week ahead.
	assert.Contains(t, prompt, "Wed=2026-09-16")
	assert.Contains(t, prompt, "Asia/Jerusalem timezone")
}

func TestBuildPromptIncludesHistoryInOrder(t *testing.T) {
	history := []models.Turn{
		{Role: models.RoleUser, Content: "add soccer practice"},
		{Role: models.RoleAssistant, Content: "What day is practice?"},
		{Role: models.RoleUser, Content: "every Tuesday at 5"},
	}

	prompt := BuildPrompt(testReference(t), history, "")

	assert.Contains(t, prompt, "user: add soccer practice")
	assert.Contains(t, prompt, "assistant: What day is practice?")
	assert.Less(t,
		strings.Index(prompt, "add soccer practice"),
		strings.Index(prompt, "every Tuesday at 5"))
}

func TestBuildPromptImageSection(t *testing.T) {
	withImage := BuildPrompt(testReference(t), nil, `{"event_name":"Wedding"}`)
	assert.Contains(t, withImage, "## Image Data")
	assert.Contains(t, withImage, `{"event_name":"Wedding"}`)

	withoutImage := BuildPrompt(testReference(t), nil, "")
	assert.NotContains(t, withoutImage, "## Image Data")
}

func TestParseIntent(t *testing.T) {
	intent, err := ParseIntent(`{
		"action": "create_event",
		"message": "✅ Added: Dentist tomorrow at 3 PM",
		"event": {"title": "Dentist", "start_datetime": "2026-09-10T15:00:00"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, models.ActionCreateEvent, intent.Action)
	assert.True(t, intent.WantsEvent())
}

func TestParseIntentRejectsUnknownAction(t *testing.T) {
	_, err := ParseIntent(`{"action": "delete_event", "message": "ok"}`)
	assert.Error(t, err)
}

func TestParseIntentRejectsMissingMessage(t *testing.T) {
	_, err := ParseIntent(`{"action": "chat", "message": ""}`)
	assert.Error(t, err)
}
