package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/metrics"
)

const userAgent = "eventrelay-webhook/1.0"

const (
	deliveryDelivered = "delivered"
	deliveryFailed    = "failed"
)

type RegisterInput struct {
	URL        string
	EventTypes []string
	Secret     string
	Headers    map[string]string
	RetryCount *int
	Timeout    *time.Duration
	Active     *bool
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (Endpoint, error)
	Unregister(ctx context.Context, id string) bool
	List(ctx context.Context) []Endpoint
	Close()
}

type service struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint

	client  *http.Client
	backoff time.Duration
	unsubs  []func()
	base    context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewService(bus domain.EventBus, client *http.Client, backoffBase time.Duration, log *zap.Logger) Service {
	if client == nil {
		client = &http.Client{}
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &service{
		endpoints: make(map[string]*Endpoint),
		client:    client,
		backoff:   backoffBase,
		base:      ctx,
		cancel:    cancel,
		log:       log,
	}

	for _, t := range domain.AllEventTypes() {
		s.unsubs = append(s.unsubs, bus.Subscribe(t, s.handleEvent))
	}

	return s
}

func (s *service) Register(_ context.Context, in RegisterInput) (Endpoint, error) {
	u, err := url.Parse(in.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Endpoint{}, &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "url must be a valid http(s) URL",
			HTTPStatus: http.StatusBadRequest,
		}
	}

	if len(in.EventTypes) == 0 {
		return Endpoint{}, &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "event_types is required",
			HTTPStatus: http.StatusBadRequest,
		}
	}

	types := make([]domain.EventType, 0, len(in.EventTypes))
	for _, raw := range in.EventTypes {
		t, err := domain.ParseEventType(raw)
		if err != nil {
			return Endpoint{}, err
		}
		types = append(types, t)
	}

	retryCount := DefaultRetryCount
	if in.RetryCount != nil {
		if *in.RetryCount < 1 {
			return Endpoint{}, &domain.DomainError{
				Code:       domain.ErrorCodeValidation,
				Message:    "retry_count must be at least 1",
				HTTPStatus: http.StatusBadRequest,
			}
		}
		retryCount = *in.RetryCount
	}

	timeout := DefaultTimeout
	if in.Timeout != nil {
		if *in.Timeout <= 0 {
			return Endpoint{}, &domain.DomainError{
				Code:       domain.ErrorCodeValidation,
				Message:    "timeout must be positive",
				HTTPStatus: http.StatusBadRequest,
			}
		}
		timeout = *in.Timeout
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	headers := make(map[string]string, len(in.Headers))
	for k, v := range in.Headers {
		headers[k] = v
	}

	ep := Endpoint{
		ID:         uuid.NewString(),
		URL:        in.URL,
		EventTypes: types,
		Secret:     in.Secret,
		Headers:    headers,
		RetryCount: retryCount,
		Timeout:    timeout,
		Active:     active,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.endpoints[ep.ID] = &ep
	s.mu.Unlock()

	s.log.Info("webhook registered",
		zap.String("endpoint_id", ep.ID),
		zap.String("url", ep.URL),
		zap.Int("event_types", len(ep.EventTypes)),
	)

	return ep, nil
}

func (s *service) Unregister(_ context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.endpoints[id]
	if ok {
		delete(s.endpoints, id)
	}
	s.mu.Unlock()

	if ok {
		s.log.Info("webhook unregistered", zap.String("endpoint_id", id))
	}
	return ok
}

func (s *service) List(_ context.Context) []Endpoint {
	s.mu.RLock()
	out := make([]Endpoint, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		out = append(out, *ep)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *service) handleEvent(_ context.Context, e domain.Event) {
	s.mu.RLock()
	targets := make([]Endpoint, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		if ep.Active && ep.subscribesTo(e.Type) {
			targets = append(targets, *ep)
		}
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	body, err := json.Marshal(newEnvelope(e))
	if err != nil {
		s.log.Error("webhook payload marshal failed",
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
		return
	}

	for _, ep := range targets {
		s.wg.Add(1)
		go func(ep Endpoint) {
			defer s.wg.Done()
			s.deliver(ep, e, body)
		}(ep)
	}
}

func (s *service) deliver(ep Endpoint, e domain.Event, body []byte) {
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(ep.RetryCount-1), retry.NewExponential(s.backoff))

	err := retry.Do(s.base, backoff, func(ctx context.Context) error {
		attempt++
		if err := s.attempt(ctx, ep, body); err != nil {
			metrics.WebhookAttempt("error")
			s.log.Warn("webhook attempt failed",
				zap.String("endpoint_id", ep.ID),
				zap.String("url", ep.URL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		metrics.WebhookAttempt("success")
		return nil
	})

	at := time.Now().UTC()
	if err != nil {
		metrics.WebhookDelivery("abandoned")
		s.log.Error("webhook delivery abandoned",
			zap.String("endpoint_id", ep.ID),
			zap.String("url", ep.URL),
			zap.String("event_id", e.ID),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		s.recordResult(ep.ID, at, deliveryFailed, err.Error())
		return
	}

	metrics.WebhookDelivery("delivered")
	s.log.Info("webhook delivered",
		zap.String("endpoint_id", ep.ID),
		zap.String("url", ep.URL),
		zap.String("event_id", e.ID),
	)
	s.recordResult(ep.ID, at, deliveryDelivered, "")
}

func (s *service) attempt(ctx context.Context, ep Endpoint, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, ep.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	if ep.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(ep.Secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (s *service) recordResult(id string, at time.Time, status, errMsg string) {
	s.mu.Lock()
	if ep, ok := s.endpoints[id]; ok {
		ep.LastAttemptAt = &at
		ep.LastStatus = status
		ep.LastError = errMsg
	}
	s.mu.Unlock()
}

func (s *service) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.cancel()
	s.wg.Wait()
	s.client.CloseIdleConnections()
}
