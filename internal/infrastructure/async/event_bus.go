package async

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/metrics"
)

const (
	DefaultHistorySize  = 1000
	defaultHistoryLimit = 100
)

type EventBus struct {
	mu         sync.RWMutex
	subs       map[domain.EventType]map[int]domain.Handler
	nextID     int
	history    []domain.Event
	maxHistory int
	closed     bool
	base       context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	log        *zap.Logger
}

func NewEventBus(parent context.Context, historySize int, log *zap.Logger) *EventBus {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	ctx, cancel := context.WithCancel(parent)
	return &EventBus{
		subs:       make(map[domain.EventType]map[int]domain.Handler),
		maxHistory: historySize,
		base:       ctx,
		cancel:     cancel,
		log:        log,
	}
}

func (b *EventBus) Subscribe(t domain.EventType, h domain.Handler) func() {
	b.mu.Lock()
	handlers := b.subs[t]
	if handlers == nil {
		handlers = make(map[int]domain.Handler)
		b.subs[t] = handlers
	}
	id := b.nextID
	b.nextID++
	handlers[id] = h
	b.mu.Unlock()

	b.log.Debug("handler subscribed", zap.String("type", string(t)))

	return func() {
		b.mu.Lock()
		if handlers, ok := b.subs[t]; ok {
			delete(handlers, id)
		}
		b.mu.Unlock()
	}
}

func (b *EventBus) Publish(_ context.Context, e domain.Event) {
	b.dispatch(b.base, e, nil)
}

func (b *EventBus) PublishAndWait(ctx context.Context, e domain.Event) {
	var wait sync.WaitGroup
	b.dispatch(ctx, e, &wait)
	wait.Wait()
}

func (b *EventBus) dispatch(ctx context.Context, e domain.Event, wait *sync.WaitGroup) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.history = append(b.history, e)
	if len(b.history) > b.maxHistory {
		b.history = b.history[len(b.history)-b.maxHistory:]
	}

	handlers := make([]domain.Handler, 0, len(b.subs[e.Type]))
	for _, h := range b.subs[e.Type] {
		handlers = append(handlers, h)
	}

	b.wg.Add(len(handlers))
	if wait != nil {
		wait.Add(len(handlers))
	}
	b.mu.Unlock()

	metrics.EventPublished(string(e.Type))
	b.log.Info("event published",
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("source", e.Source),
	)

	for _, h := range handlers {
		go func(h domain.Handler) {
			defer b.wg.Done()
			if wait != nil {
				defer wait.Done()
			}
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked",
						zap.String("type", string(e.Type)),
						zap.Any("panic", r),
					)
				}
			}()
			h(ctx, e)
		}(h)
	}
}

func (b *EventBus) History(f domain.HistoryFilter) []domain.Event {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Event, 0, limit)
	for _, e := range b.history {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.ProjectID != "" && e.ProjectID != f.ProjectID {
			continue
		}
		out = append(out, e)
	}

	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func (b *EventBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}
