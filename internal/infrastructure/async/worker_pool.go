package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context)

type WorkerPool struct {
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	taskTimeout time.Duration
	log         *zap.Logger
}

func NewWorkerPool(parent context.Context, size int, taskTimeout time.Duration, log *zap.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(parent)
	p := &WorkerPool{
		tasks:       make(chan Task),
		ctx:         ctx,
		cancel:      cancel,
		taskTimeout: taskTimeout,
		log:         log,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			safeCtx, cancel := context.WithTimeout(p.ctx, p.taskTimeout)
			func() {
				defer func() {
					if r := recover(); r != nil {
						p.log.Error("task panicked", zap.Any("panic", r))
					}
				}()
				task(safeCtx)
			}()
			cancel()
		}
	}
}

func (p *WorkerPool) Submit(task Task) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
