package archive

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"eventrelay/internal/domain"
	"eventrelay/internal/metrics"
)

const (
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second

	flushTimeout = 10 * time.Second
)

type Archiver struct {
	store     domain.EventStore
	uow       domain.UnitOfWork
	queue     chan domain.Event
	batchSize int
	interval  time.Duration
	unsubs    []func()
	done      chan struct{}
	wg        sync.WaitGroup
	log       *zap.Logger
}

func New(bus domain.EventBus, uow domain.UnitOfWork, store domain.EventStore, batchSize int, interval time.Duration, log *zap.Logger) *Archiver {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	a := &Archiver{
		store:     store,
		uow:       uow,
		queue:     make(chan domain.Event, batchSize*4),
		batchSize: batchSize,
		interval:  interval,
		done:      make(chan struct{}),
		log:       log,
	}

	for _, t := range domain.AllEventTypes() {
		a.unsubs = append(a.unsubs, bus.Subscribe(t, a.enqueue))
	}

	a.wg.Add(1)
	go a.loop()

	return a
}

func (a *Archiver) enqueue(_ context.Context, e domain.Event) {
	select {
	case a.queue <- e:
	default:
		metrics.ArchiveEvents("dropped", 1)
		a.log.Warn("archive queue full, event dropped",
			zap.String("event_id", e.ID),
			zap.String("type", string(e.Type)),
		)
	}
}

func (a *Archiver) loop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	batch := make([]domain.Event, 0, a.batchSize)

	for {
		select {
		case e := <-a.queue:
			batch = append(batch, e)
			if len(batch) >= a.batchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.done:
			for {
				select {
				case e := <-a.queue:
					batch = append(batch, e)
				default:
					if len(batch) > 0 {
						a.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (a *Archiver) flush(batch []domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	err := a.uow.WithinTx(ctx, func(ctx context.Context) error {
		return a.store.SaveBatch(ctx, batch)
	})
	if err != nil {
		metrics.ArchiveEvents("failed", len(batch))
		a.log.Error("archive flush failed",
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		return
	}

	metrics.ArchiveEvents("stored", len(batch))
	a.log.Debug("archive flush", zap.Int("events", len(batch)))
}

func (a *Archiver) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	close(a.done)
	a.wg.Wait()
}
