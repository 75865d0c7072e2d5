package dto

import "time"

type EmitEventRequest struct {
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
	UserID    string         `json:"user_id"`
	ProjectID string         `json:"project_id"`
	Metadata  map[string]any `json:"metadata"`
}

type EmitEventResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	UserID    string         `json:"user_id,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type EventListResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}
