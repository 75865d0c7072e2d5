package domain

import "context"

type Handler func(ctx context.Context, e Event)

type HistoryFilter struct {
	Type      EventType
	UserID    string
	ProjectID string
	Limit     int
}

type EventBus interface {
	Subscribe(t EventType, h Handler) (unsubscribe func())
	Publish(ctx context.Context, e Event)
	PublishAndWait(ctx context.Context, e Event)
	History(f HistoryFilter) []Event
}
