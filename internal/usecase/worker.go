package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkerPool drains the traversal queue with a fixed number of workers.
type WorkerPool struct {
	game         Game
	workers      int
	pollInterval time.Duration
	logger       *zap.Logger
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewWorkerPool(game Game, workers int, pollInterval time.Duration, logger *zap.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		game:         game,
		workers:      workers,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches the workers. They run until Stop is called or ctx ends.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop cancels the workers and waits for the running traversals to abort.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))
	for {
		processed, err := p.game.ProcessNext(ctx)
		if err != nil {
			log.Error("failed to process traversal job", zap.Error(err))
		}
		if processed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.pollInterval):
		}
	}
}
