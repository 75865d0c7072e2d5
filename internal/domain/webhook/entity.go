package webhook

import (
	"time"

	"eventrelay/internal/domain"
)

const (
	DefaultRetryCount = 3
	DefaultTimeout    = 30 * time.Second
)

type Endpoint struct {
	ID            string
	URL           string
	EventTypes    []domain.EventType
	Secret        string
	Headers       map[string]string
	RetryCount    int
	Timeout       time.Duration
	Active        bool
	CreatedAt     time.Time
	LastAttemptAt *time.Time
	LastStatus    string
	LastError     string
}

func (ep Endpoint) subscribesTo(t domain.EventType) bool {
	for _, et := range ep.EventTypes {
		if et == t {
			return true
		}
	}
	return false
}
