package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/metrics"
)

const adHocEventID = "custom"

type SendInput struct {
	Channel   string
	Recipient string
	Subject   string
	Content   string
}

type ListFilter struct {
	Status  Status
	Channel Channel
}

type Service interface {
	Send(ctx context.Context, in SendInput) (Notification, error)
	List(ctx context.Context, f ListFilter) []Notification
	Close()
}

var notificationEvents = []domain.EventType{
	domain.EventTypeProjectCreated,
	domain.EventTypeProposalGenerated,
	domain.EventTypeProposalApproved,
	domain.EventTypeUserRegistered,
	domain.EventTypeSystemError,
}

type service struct {
	mu    sync.Mutex
	items []Notification
	index map[string]int

	templates map[string]Template
	sender    Sender
	unsubs    []func()
	log       *zap.Logger
}

func NewService(bus domain.EventBus, sender Sender, log *zap.Logger) Service {
	s := &service{
		index:     make(map[string]int),
		templates: defaultTemplates(),
		sender:    sender,
		log:       log,
	}

	for _, t := range notificationEvents {
		s.unsubs = append(s.unsubs, bus.Subscribe(t, s.handleEvent))
	}

	return s
}

func (s *service) handleEvent(ctx context.Context, e domain.Event) {
	tmpl, ok := s.templates[templateKey(e.Type)]
	if !ok {
		return
	}

	for _, r := range recipientsFor(e) {
		n, err := s.create(e, r, tmpl)
		if err != nil {
			var mf *MissingFieldError
			if errors.As(err, &mf) {
				metrics.NotificationProcessed(string(r.Channel), "skipped")
				s.log.Warn("notification skipped, template field missing",
					zap.String("event_id", e.ID),
					zap.String("type", string(e.Type)),
					zap.String("field", mf.Field),
				)
			}
			continue
		}
		s.send(ctx, n.ID)
	}
}

func (s *service) create(e domain.Event, r Recipient, tmpl Template) (Notification, error) {
	fields := renderFields(e, r)

	subject, err := render(tmpl.Subject, fields)
	if err != nil {
		return Notification{}, err
	}
	content, err := render(tmpl.Content, fields)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:        uuid.NewString(),
		EventID:   e.ID,
		Channel:   r.Channel,
		Recipient: r.Address,
		Subject:   subject,
		Content:   content,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.index[n.ID] = len(s.items)
	s.items = append(s.items, n)
	s.mu.Unlock()

	return n, nil
}

func (s *service) send(ctx context.Context, id string) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.items[i].Attempts++
	n := s.items[i]
	s.mu.Unlock()

	err := s.sender.Send(ctx, n)

	now := time.Now().UTC()
	s.mu.Lock()
	if err != nil {
		s.items[i].Status = StatusFailed
	} else {
		s.items[i].Status = StatusSent
		s.items[i].SentAt = &now
	}
	final := s.items[i].Status
	s.mu.Unlock()

	metrics.NotificationProcessed(string(n.Channel), string(final))
	if err != nil {
		s.log.Error("notification failed",
			zap.String("notification_id", n.ID),
			zap.String("channel", string(n.Channel)),
			zap.String("recipient", n.Recipient),
			zap.Error(err),
		)
		return
	}
	s.log.Info("notification sent",
		zap.String("notification_id", n.ID),
		zap.String("channel", string(n.Channel)),
		zap.String("recipient", n.Recipient),
	)
}

func (s *service) Send(ctx context.Context, in SendInput) (Notification, error) {
	ch, err := ParseChannel(in.Channel)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:        uuid.NewString(),
		EventID:   adHocEventID,
		Channel:   ch,
		Recipient: in.Recipient,
		Subject:   in.Subject,
		Content:   in.Content,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.index[n.ID] = len(s.items)
	s.items = append(s.items, n)
	s.mu.Unlock()

	s.send(ctx, n.ID)

	s.mu.Lock()
	out := s.items[s.index[n.ID]]
	s.mu.Unlock()
	return out, nil
}

func (s *service) List(_ context.Context, f ListFilter) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.items))
	for _, n := range s.items {
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if f.Channel != "" && n.Channel != f.Channel {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *service) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
}
