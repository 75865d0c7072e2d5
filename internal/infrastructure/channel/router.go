package channel

import (
	"context"
	"fmt"

	"eventrelay/internal/domain/notify"
	"eventrelay/internal/infrastructure/async"
)

type Router struct {
	pool    *async.WorkerPool
	senders map[notify.Channel]notify.Sender
}

func NewRouter(pool *async.WorkerPool, senders map[notify.Channel]notify.Sender) *Router {
	return &Router{
		pool:    pool,
		senders: senders,
	}
}

func (r *Router) Send(ctx context.Context, n notify.Notification) error {
	done := make(chan error, 1)
	if !r.pool.Submit(func(taskCtx context.Context) { done <- r.dispatch(taskCtx, n) }) {
		return fmt.Errorf("notification workers stopped")
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) dispatch(ctx context.Context, n notify.Notification) error {
	sender, ok := r.senders[n.Channel]
	if !ok {
		return fmt.Errorf("unsupported notification channel: %s", n.Channel)
	}
	return sender.Send(ctx, n)
}
