package events

import (
	"context"
	"net/http"

	"eventrelay/internal/domain"
)

const defaultSource = "api"

type EmitInput struct {
	Type      string
	Source    string
	Data      map[string]any
	UserID    string
	ProjectID string
	Metadata  map[string]any
}

type Service interface {
	Emit(ctx context.Context, in EmitInput) (domain.Event, error)
	History(ctx context.Context, f domain.HistoryFilter) []domain.Event
	Archived(ctx context.Context, f domain.HistoryFilter) ([]domain.Event, error)
}

type service struct {
	bus   domain.EventBus
	store domain.EventStore
}

func NewService(bus domain.EventBus, store domain.EventStore) Service {
	return &service{
		bus:   bus,
		store: store,
	}
}

func (s *service) Emit(ctx context.Context, in EmitInput) (domain.Event, error) {
	t, err := domain.ParseEventType(in.Type)
	if err != nil {
		return domain.Event{}, err
	}

	source := in.Source
	if source == "" {
		source = defaultSource
	}

	e := domain.NewEvent(t, source, in.Data)
	e.UserID = in.UserID
	e.ProjectID = in.ProjectID
	e.Metadata = in.Metadata

	s.bus.Publish(ctx, e)
	return e, nil
}

func (s *service) History(_ context.Context, f domain.HistoryFilter) []domain.Event {
	return s.bus.History(f)
}

func (s *service) Archived(ctx context.Context, f domain.HistoryFilter) ([]domain.Event, error) {
	if s.store == nil {
		return nil, &domain.DomainError{
			Code:       domain.ErrorCodeArchiveDisabled,
			Message:    "event archive is not configured",
			HTTPStatus: http.StatusServiceUnavailable,
		}
	}
	return s.store.Query(ctx, f)
}
