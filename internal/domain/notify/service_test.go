package notify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/domain/notify"
	"eventrelay/internal/infrastructure/async"
)

type captureSender struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (s *captureSender) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *captureSender) last() notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func newTestService(t *testing.T) (*async.EventBus, notify.Service, *captureSender, func()) {
	t.Helper()

	bus := async.NewEventBus(context.Background(), 100, zap.NewNop())
	sender := &captureSender{}
	svc := notify.NewService(bus, sender, zap.NewNop())

	cleanup := func() {
		svc.Close()
		bus.Close()
	}
	return bus, svc, sender, cleanup
}

func TestUserRegisteredNotification(t *testing.T) {
	bus, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	e := domain.NewEvent(domain.EventTypeUserRegistered, "api", map[string]any{
		"email":     "ana@example.com",
		"full_name": "Ana",
	})
	bus.PublishAndWait(context.Background(), e)

	if sender.count() != 1 {
		t.Fatalf("expected 1 sent notification, got %d", sender.count())
	}
	n := sender.last()
	if n.Channel != notify.ChannelEmail || n.Recipient != "ana@example.com" {
		t.Fatalf("unexpected recipient: %+v", n)
	}
	if n.Subject != "Welcome to the platform" {
		t.Fatalf("unexpected subject %q", n.Subject)
	}
	if !strings.Contains(n.Content, "Hello Ana,") {
		t.Fatalf("content must greet the recipient, got %q", n.Content)
	}

	list := svc.List(context.Background(), notify.ListFilter{})
	if len(list) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(list))
	}
	got := list[0]
	if got.EventID != e.ID || got.Status != notify.StatusSent || got.Attempts != 1 || got.SentAt == nil {
		t.Fatalf("unexpected notification state: %+v", got)
	}
}

func TestProjectCreatedDefaultsRecipientName(t *testing.T) {
	bus, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	e := domain.NewEvent(domain.EventTypeProjectCreated, "api", map[string]any{
		"user_email":   "bob@example.com",
		"project_name": "Solar",
		"created_at":   "2026-01-10",
		"application":  "rooftop",
	})
	e.ProjectID = "p1"
	bus.PublishAndWait(context.Background(), e)

	if sender.count() != 1 {
		t.Fatalf("expected 1 sent notification, got %d", sender.count())
	}
	n := sender.last()
	if n.Recipient != "bob@example.com" {
		t.Fatalf("unexpected recipient %q", n.Recipient)
	}
	if !strings.Contains(n.Content, "Hello User,") {
		t.Fatalf("expected default recipient name, got %q", n.Content)
	}
	if !strings.Contains(n.Content, "Project ID: p1") {
		t.Fatalf("expected project id from event, got %q", n.Content)
	}

	if got := svc.List(context.Background(), notify.ListFilter{}); len(got) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(got))
	}
}

func TestMissingTemplateFieldSkipsNotification(t *testing.T) {
	bus, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	e := domain.NewEvent(domain.EventTypeProjectCreated, "api", map[string]any{
		"user_email": "bob@example.com",
	})
	bus.PublishAndWait(context.Background(), e)

	if sender.count() != 0 {
		t.Fatalf("expected no sends for incomplete data, got %d", sender.count())
	}
	if got := svc.List(context.Background(), notify.ListFilter{}); len(got) != 0 {
		t.Fatalf("expected no stored notifications, got %d", len(got))
	}
}

func TestEventWithoutTemplateIsIgnored(t *testing.T) {
	bus, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	e := domain.NewEvent(domain.EventTypeProposalApproved, "api", map[string]any{
		"user_email": "bob@example.com",
	})
	bus.PublishAndWait(context.Background(), e)

	if sender.count() != 0 {
		t.Fatalf("expected no sends without a template, got %d", sender.count())
	}
	if got := svc.List(context.Background(), notify.ListFilter{}); len(got) != 0 {
		t.Fatalf("expected no stored notifications, got %d", len(got))
	}
}

func TestSystemErrorNotifiesAdmin(t *testing.T) {
	bus, _, sender, cleanup := newTestService(t)
	defer cleanup()

	e := domain.NewEvent(domain.EventTypeSystemError, "pricing", map[string]any{
		"error_type":    "timeout",
		"error_details": "pricing backend unreachable",
	})
	e.UserID = "u9"
	bus.PublishAndWait(context.Background(), e)

	if sender.count() != 1 {
		t.Fatalf("expected 1 sent notification, got %d", sender.count())
	}
	n := sender.last()
	if n.Recipient != "admin@eventrelay.io" {
		t.Fatalf("system alerts must go to the admin, got %q", n.Recipient)
	}
	if n.Subject != "System Alert - timeout" {
		t.Fatalf("unexpected subject %q", n.Subject)
	}
	if !strings.Contains(n.Content, "User: u9") {
		t.Fatalf("expected user from event in content, got %q", n.Content)
	}
	if !strings.Contains(n.Content, "pricing backend unreachable") {
		t.Fatalf("expected error details in content, got %q", n.Content)
	}
}

func TestSendAdHoc(t *testing.T) {
	_, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	n, err := svc.Send(context.Background(), notify.SendInput{
		Channel:   "sms",
		Recipient: "+5511999990000",
		Subject:   "Reminder",
		Content:   "Your proposal expires tomorrow",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if n.EventID != "custom" {
		t.Fatalf("ad-hoc notifications must use the custom event id, got %q", n.EventID)
	}
	if n.Status != notify.StatusSent || n.Attempts != 1 || n.SentAt == nil {
		t.Fatalf("unexpected notification state: %+v", n)
	}
	if sender.count() != 1 || sender.last().Channel != notify.ChannelSMS {
		t.Fatalf("expected one sms send, got %d", sender.count())
	}
}

func TestSendRejectsUnknownChannel(t *testing.T) {
	_, svc, _, cleanup := newTestService(t)
	defer cleanup()

	_, err := svc.Send(context.Background(), notify.SendInput{
		Channel:   "pigeon",
		Recipient: "a@b.com",
	})

	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeInvalidChannel {
		t.Fatalf("expected INVALID_CHANNEL, got %v", err)
	}
}

func TestSendFailureMarksNotificationFailed(t *testing.T) {
	_, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	sender.err = errors.New("smtp down")

	n, err := svc.Send(context.Background(), notify.SendInput{
		Channel:   "email",
		Recipient: "a@b.com",
		Subject:   "Hi",
		Content:   "there",
	})
	if err != nil {
		t.Fatalf("Send must not fail the request itself: %v", err)
	}

	if n.Status != notify.StatusFailed || n.Attempts != 1 || n.SentAt != nil {
		t.Fatalf("unexpected notification state: %+v", n)
	}
}

func TestListFilters(t *testing.T) {
	_, svc, sender, cleanup := newTestService(t)
	defer cleanup()

	if _, err := svc.Send(context.Background(), notify.SendInput{Channel: "sms", Recipient: "1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sender.err = errors.New("down")
	if _, err := svc.Send(context.Background(), notify.SendInput{Channel: "email", Recipient: "2"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := svc.List(context.Background(), notify.ListFilter{}); len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got := svc.List(context.Background(), notify.ListFilter{Status: notify.StatusFailed}); len(got) != 1 || got[0].Channel != notify.ChannelEmail {
		t.Fatalf("unexpected failed filter result: %+v", got)
	}
	if got := svc.List(context.Background(), notify.ListFilter{Channel: notify.ChannelSMS}); len(got) != 1 || got[0].Status != notify.StatusSent {
		t.Fatalf("unexpected channel filter result: %+v", got)
	}
	if got := svc.List(context.Background(), notify.ListFilter{Status: notify.StatusSent, Channel: notify.ChannelEmail}); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
