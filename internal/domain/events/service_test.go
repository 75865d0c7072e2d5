package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventrelay/internal/domain"
	"eventrelay/internal/domain/events"
)

type busFake struct {
	published []domain.Event
	history   []domain.Event
	lastQuery domain.HistoryFilter
}

func (b *busFake) Subscribe(domain.EventType, domain.Handler) func() { return func() {} }

func (b *busFake) Publish(_ context.Context, e domain.Event) {
	b.published = append(b.published, e)
}

func (b *busFake) PublishAndWait(_ context.Context, e domain.Event) {
	b.published = append(b.published, e)
}

func (b *busFake) History(f domain.HistoryFilter) []domain.Event {
	b.lastQuery = f
	return b.history
}

type storeFake struct {
	events []domain.Event
	err    error
}

func (s *storeFake) SaveBatch(context.Context, []domain.Event) error { return s.err }

func (s *storeFake) Query(_ context.Context, f domain.HistoryFilter) ([]domain.Event, error) {
	return s.events, s.err
}

func TestEmitRejectsUnknownType(t *testing.T) {
	bus := &busFake{}
	svc := events.NewService(bus, nil)

	_, err := svc.Emit(context.Background(), events.EmitInput{Type: "bogus"})

	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeInvalidEventType {
		t.Fatalf("expected INVALID_EVENT_TYPE, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("invalid events must not be published")
	}
}

func TestEmitDefaults(t *testing.T) {
	bus := &busFake{}
	svc := events.NewService(bus, nil)

	e, err := svc.Emit(context.Background(), events.EmitInput{Type: "user.login"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if e.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if e.Source != "api" {
		t.Fatalf("expected default source api, got %q", e.Source)
	}
	if e.Data == nil {
		t.Fatalf("event data must never be nil")
	}
	if time.Since(e.Timestamp) > 5*time.Second || e.Timestamp.Location() != time.UTC {
		t.Fatalf("unexpected timestamp %v", e.Timestamp)
	}
	if len(bus.published) != 1 || bus.published[0].ID != e.ID {
		t.Fatalf("expected event published once, got %+v", bus.published)
	}
}

func TestEmitCarriesRoutingAndMetadata(t *testing.T) {
	bus := &busFake{}
	svc := events.NewService(bus, nil)

	e, err := svc.Emit(context.Background(), events.EmitInput{
		Type:      "project.created",
		Source:    "frontend",
		Data:      map[string]any{"project_name": "Solar"},
		UserID:    "u1",
		ProjectID: "p1",
		Metadata:  map[string]any{"ip": "10.0.0.1"},
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if e.Source != "frontend" || e.UserID != "u1" || e.ProjectID != "p1" {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.Data["project_name"] != "Solar" || e.Metadata["ip"] != "10.0.0.1" {
		t.Fatalf("data or metadata not carried: %+v", e)
	}
}

func TestHistoryDelegatesToBus(t *testing.T) {
	bus := &busFake{history: []domain.Event{
		{ID: "e1", Type: domain.EventTypeUserLogin},
		{ID: "e2", Type: domain.EventTypeUserLogin},
	}}
	svc := events.NewService(bus, nil)

	f := domain.HistoryFilter{Type: domain.EventTypeUserLogin, Limit: 5}
	got := svc.History(context.Background(), f)

	if len(got) != 2 || bus.lastQuery != f {
		t.Fatalf("unexpected history result %v (filter %+v)", got, bus.lastQuery)
	}
}

func TestArchivedWithoutStore(t *testing.T) {
	svc := events.NewService(&busFake{}, nil)

	_, err := svc.Archived(context.Background(), domain.HistoryFilter{})

	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeArchiveDisabled {
		t.Fatalf("expected ARCHIVE_DISABLED, got %v", err)
	}
	if de.HTTPStatus != 503 {
		t.Fatalf("expected status 503, got %d", de.HTTPStatus)
	}
}

func TestArchivedQueriesStore(t *testing.T) {
	store := &storeFake{events: []domain.Event{{ID: "e1"}}}
	svc := events.NewService(&busFake{}, store)

	got, err := svc.Archived(context.Background(), domain.HistoryFilter{})
	if err != nil || len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("unexpected archive result %v %v", got, err)
	}
}
