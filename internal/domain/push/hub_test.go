package push_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/domain/push"
	"eventrelay/internal/infrastructure/async"
)

type connFake struct {
	mu     sync.Mutex
	msgs   [][]byte
	err    error
	closed bool
}

func (c *connFake) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *connFake) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *connFake) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *connFake) last() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msgs[len(c.msgs)-1]
}

func (c *connFake) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestHub(t *testing.T) (*async.EventBus, *push.Hub, func()) {
	t.Helper()

	bus := async.NewEventBus(context.Background(), 100, zap.NewNop())
	hub := push.NewHub(bus, zap.NewNop())

	cleanup := func() {
		hub.Close()
		bus.Close()
	}
	return bus, hub, cleanup
}

func TestTargetedEventReachesOnlyThatUser(t *testing.T) {
	bus, hub, cleanup := newTestHub(t)
	defer cleanup()

	c1 := &connFake{}
	c2 := &connFake{}
	hub.Register("u1", c1)
	hub.Register("u2", c2)

	e := domain.NewEvent(domain.EventTypeProposalGenerated, "api", map[string]any{"proposal_number": "P-1"})
	e.UserID = "u1"
	bus.PublishAndWait(context.Background(), e)

	if c1.count() != 1 || c2.count() != 0 {
		t.Fatalf("expected delivery only to u1, got %d/%d", c1.count(), c2.count())
	}

	var msg struct {
		Type string `json:"type"`
		Data struct {
			ID   string         `json:"id"`
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(c1.last(), &msg); err != nil {
		t.Fatalf("unmarshal push message: %v", err)
	}
	if msg.Type != "event" || msg.Data.ID != e.ID || msg.Data.Type != "proposal.generated" {
		t.Fatalf("unexpected push message: %+v", msg)
	}
	if msg.Data.Data["proposal_number"] != "P-1" {
		t.Fatalf("event data missing from push message: %+v", msg.Data.Data)
	}
}

func TestBroadcastReachesAllUsers(t *testing.T) {
	bus, hub, cleanup := newTestHub(t)
	defer cleanup()

	c1 := &connFake{}
	c2 := &connFake{}
	hub.Register("u1", c1)
	hub.Register("u2", c2)

	bus.PublishAndWait(context.Background(), domain.NewEvent(domain.EventTypeConfigurationChanged, "api", nil))

	if c1.count() != 1 || c2.count() != 1 {
		t.Fatalf("expected broadcast to all users, got %d/%d", c1.count(), c2.count())
	}
}

func TestTargetedEventForAbsentUserIsDropped(t *testing.T) {
	bus, hub, cleanup := newTestHub(t)
	defer cleanup()

	c1 := &connFake{}
	hub.Register("u1", c1)

	e := domain.NewEvent(domain.EventTypeUserLogin, "api", nil)
	e.UserID = "nobody"
	bus.PublishAndWait(context.Background(), e)

	if c1.count() != 0 {
		t.Fatalf("expected no deliveries, got %d", c1.count())
	}
}

func TestRegisterReplacesExistingConnection(t *testing.T) {
	bus, hub, cleanup := newTestHub(t)
	defer cleanup()

	c1 := &connFake{}
	c2 := &connFake{}
	hub.Register("u1", c1)
	hub.Register("u1", c2)

	if !c1.isClosed() {
		t.Fatalf("replaced connection must be closed")
	}

	hub.Unregister("u1", c1)
	if got := hub.Connections(); len(got) != 1 {
		t.Fatalf("stale unregister must not drop the current connection, got %v", got)
	}

	e := domain.NewEvent(domain.EventTypeUserLogin, "api", nil)
	e.UserID = "u1"
	bus.PublishAndWait(context.Background(), e)

	if c1.count() != 0 || c2.count() != 1 {
		t.Fatalf("expected delivery to the replacement only, got %d/%d", c1.count(), c2.count())
	}
}

func TestSendErrorEvictsConnection(t *testing.T) {
	bus, hub, cleanup := newTestHub(t)
	defer cleanup()

	c1 := &connFake{err: errors.New("gone")}
	hub.Register("u1", c1)

	e := domain.NewEvent(domain.EventTypeUserLogin, "api", nil)
	e.UserID = "u1"
	bus.PublishAndWait(context.Background(), e)

	if got := hub.Connections(); len(got) != 0 {
		t.Fatalf("expected connection evicted, got %v", got)
	}
	if !c1.isClosed() {
		t.Fatalf("evicted connection must be closed")
	}
}

func TestConnectionsSorted(t *testing.T) {
	_, hub, cleanup := newTestHub(t)
	defer cleanup()

	hub.Register("beta", &connFake{})
	hub.Register("alpha", &connFake{})

	if got := hub.Connections(); !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Fatalf("unexpected connections %v", got)
	}
}

func TestCloseClosesAllConnections(t *testing.T) {
	_, hub, cleanup := newTestHub(t)

	c1 := &connFake{}
	c2 := &connFake{}
	hub.Register("u1", c1)
	hub.Register("u2", c2)

	cleanup()

	if !c1.isClosed() || !c2.isClosed() {
		t.Fatalf("all connections must be closed on hub shutdown")
	}
	if got := hub.Connections(); len(got) != 0 {
		t.Fatalf("expected no connections after close, got %v", got)
	}
}
