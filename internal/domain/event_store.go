package domain

import "context"

type EventStore interface {
	SaveBatch(ctx context.Context, events []Event) error
	Query(ctx context.Context, f HistoryFilter) ([]Event, error)
}
