package dto

import "time"

type SendNotificationRequest struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}

type Notification struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Channel   string     `json:"channel"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Count         int            `json:"count"`
}
