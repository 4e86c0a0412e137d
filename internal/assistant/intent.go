package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/xaenox/calbot/internal/models"
)

// ParseIntent decodes and validates the model's schema-constrained
// output.
func ParseIntent(raw string) (*models.Intent, error) {
	var intent models.Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %w", err)
	}

	switch intent.Action {
	case models.ActionCreateEvent, models.ActionAskClarification, models.ActionChat:
	default:
		return nil, fmt.Errorf("unknown intent action %q", intent.Action)
	}
	if intent.Message == "" {
		return nil, fmt.Errorf("intent is missing a message")
	}

	return &intent, nil
}
