package notify

import (
	"net/http"
	"time"

	"eventrelay/internal/domain"
)

type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelWebhook   Channel = "webhook"
	ChannelWebsocket Channel = "websocket"
	ChannelSlack     Channel = "slack"
	ChannelTeams     Channel = "teams"
)

var channels = map[Channel]struct{}{
	ChannelEmail:     {},
	ChannelSMS:       {},
	ChannelWebhook:   {},
	ChannelWebsocket: {},
	ChannelSlack:     {},
	ChannelTeams:     {},
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if _, ok := channels[c]; !ok {
		return "", &domain.DomainError{
			Code:       domain.ErrorCodeInvalidChannel,
			Message:    "unknown notification channel: " + s,
			HTTPStatus: http.StatusBadRequest,
		}
	}
	return c, nil
}

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Notification struct {
	ID        string
	EventID   string
	Channel   Channel
	Recipient string
	Subject   string
	Content   string
	Status    Status
	Attempts  int
	CreatedAt time.Time
	SentAt    *time.Time
}

type Recipient struct {
	Channel Channel
	Address string
	Name    string
}
