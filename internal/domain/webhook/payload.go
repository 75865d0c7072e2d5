package webhook

import (
	"time"

	"eventrelay/internal/domain"
)

type envelope struct {
	Event envelopeEvent `json:"event"`
}

type envelopeEvent struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	Source    string           `json:"source"`
	Timestamp time.Time        `json:"timestamp"`
	Data      map[string]any   `json:"data"`
	UserID    *string          `json:"user_id"`
	ProjectID *string          `json:"project_id"`
	Metadata  map[string]any   `json:"metadata"`
}

func newEnvelope(e domain.Event) envelope {
	env := envelope{
		Event: envelopeEvent{
			ID:        e.ID,
			Type:      e.Type,
			Source:    e.Source,
			Timestamp: e.Timestamp,
			Data:      e.Data,
			Metadata:  e.Metadata,
		},
	}
	if e.UserID != "" {
		env.Event.UserID = &e.UserID
	}
	if e.ProjectID != "" {
		env.Event.ProjectID = &e.ProjectID
	}
	return env
}
