package dto

import "time"

type RegisterWebhookRequest struct {
	URL            string            `json:"url"`
	EventTypes     []string          `json:"event_types"`
	Secret         string            `json:"secret"`
	Headers        map[string]string `json:"headers"`
	RetryCount     *int              `json:"retry_count"`
	TimeoutSeconds *int              `json:"timeout_seconds"`
	Active         *bool             `json:"active"`
}

type WebhookEndpoint struct {
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	EventTypes     []string   `json:"event_types"`
	RetryCount     int        `json:"retry_count"`
	TimeoutSeconds int        `json:"timeout_seconds"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAttemptAt  *time.Time `json:"last_attempt_at,omitempty"`
	LastStatus     string     `json:"last_status,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

type UnregisterWebhookRequest struct {
	EndpointID string `json:"endpoint_id"`
}

type UnregisterWebhookResponse struct {
	Removed bool `json:"removed"`
}

type WebhookListResponse struct {
	Endpoints []WebhookEndpoint `json:"endpoints"`
	Count     int               `json:"count"`
}
