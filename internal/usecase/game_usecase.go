package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/graph"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/pkg/metrics"
	"github.com/user/philosophy-walker/pkg/utils"
)

// Game runs traversals and keeps their results and the combined path graph.
type Game interface {
	// Play traverses from start and records the result.
	Play(ctx context.Context, start string) (*entity.TraversalResult, error)
	// PlayAll plays every start page, at most concurrency at a time.
	PlayAll(ctx context.Context, starts []string, concurrency int) []PlayReport
	// Submit queues a traversal and returns its job id.
	Submit(ctx context.Context, start string) (string, error)
	// ProcessNext plays the oldest queued job. It reports false when the queue was
	// empty. A job interrupted by ctx is pushed back onto the queue.
	ProcessNext(ctx context.Context) (bool, error)
	// Result returns the stored result for start.
	Result(ctx context.Context, start string) (*entity.TraversalResult, error)
	// Recent returns up to limit stored results, newest first.
	Recent(ctx context.Context, limit int) ([]*entity.TraversalResult, error)
	// Graph returns the combined graph of every recorded path.
	Graph(ctx context.Context) (*graph.PathGraph, error)
	// TargetName is the page name of the target.
	TargetName() string
}

// Bounds for Recent.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

const requeueTimeout = 5 * time.Second

// PlayReport is the outcome of one start page of PlayAll.
type PlayReport struct {
	Start  string
	Result *entity.TraversalResult
	Err    error
}

type gameUseCase struct {
	traverser     Traverser
	traversalRepo repository.TraversalRepository
	edgeRepo      repository.GraphEdgeRepository
	queueRepo     repository.QueueRepository
	graph         *graph.PathGraph
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewGame creates a new Game use case. edgeRepo and queueRepo may be nil; the
// graph then lives in memory only and Submit returns ErrQueueDisabled.
func NewGame(
	traverser Traverser,
	traversalRepo repository.TraversalRepository,
	edgeRepo repository.GraphEdgeRepository,
	queueRepo repository.QueueRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) Game {
	return &gameUseCase{
		traverser:     traverser,
		traversalRepo: traversalRepo,
		edgeRepo:      edgeRepo,
		queueRepo:     queueRepo,
		graph:         graph.New(),
		metrics:       m,
		logger:        logger,
	}
}

func (uc *gameUseCase) Play(ctx context.Context, start string) (*entity.TraversalResult, error) {
	result, err := uc.traverser.Traverse(ctx, start)
	if err != nil {
		return nil, err
	}

	uc.graph.AddPath(result.Path)
	uc.record(ctx, result)
	return result, nil
}

// record persists a result. Storage failures are logged and never change the result.
func (uc *gameUseCase) record(ctx context.Context, result *entity.TraversalResult) {
	if err := uc.traversalRepo.Save(ctx, result); err != nil {
		uc.logger.Error("failed to save traversal result", zap.String("start", result.Start), zap.Error(err))
	}
	if uc.edgeRepo == nil {
		return
	}
	if edges := graph.PathEdges(result.Path); len(edges) > 0 {
		if err := uc.edgeRepo.AddEdges(ctx, edges); err != nil {
			uc.logger.Error("failed to save path edges", zap.String("start", result.Start), zap.Error(err))
		}
	}
}

func (uc *gameUseCase) PlayAll(ctx context.Context, starts []string, concurrency int) []PlayReport {
	reports := make([]PlayReport, len(starts))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, start := range starts {
		g.Go(func() error {
			// Each traversal owns its visited set; only the fetcher is shared.
			result, err := uc.Play(ctx, start)
			reports[i] = PlayReport{Start: start, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func (uc *gameUseCase) Submit(ctx context.Context, start string) (string, error) {
	if uc.queueRepo == nil {
		return "", ErrQueueDisabled
	}
	normalized, err := uc.traverser.Validate(start)
	if err != nil {
		return "", err
	}

	job := &entity.TraversalJob{
		ID:         utils.HashURL(normalized),
		Start:      normalized,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := uc.queueRepo.Push(ctx, job); err != nil {
		return "", fmt.Errorf("failed to queue traversal for %s: %w", normalized, err)
	}
	uc.refreshQueueLength(ctx)
	return job.ID, nil
}

func (uc *gameUseCase) ProcessNext(ctx context.Context) (bool, error) {
	if uc.queueRepo == nil {
		return false, ErrQueueDisabled
	}
	job, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			// Queue is empty, which is a normal state.
			return false, nil
		}
		return false, fmt.Errorf("failed to pop traversal job: %w", err)
	}
	uc.refreshQueueLength(ctx)

	uc.logger.Info("processing traversal job", zap.String("job_id", job.ID), zap.String("start", job.Start))
	if _, err := uc.Play(ctx, job.Start); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			uc.requeue(ctx, job)
		}
		return true, fmt.Errorf("traversal job %s failed: %w", job.ID, err)
	}
	return true, nil
}

// requeue puts back a job whose traversal was interrupted, so a later worker
// plays it. ctx is already done, so the push gets its own deadline.
func (uc *gameUseCase) requeue(ctx context.Context, job *entity.TraversalJob) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()

	if err := uc.queueRepo.Push(pushCtx, job); err != nil {
		uc.logger.Error("failed to requeue interrupted traversal job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	uc.logger.Warn("requeued interrupted traversal job", zap.String("job_id", job.ID), zap.String("start", job.Start))
	uc.refreshQueueLength(pushCtx)
}

func (uc *gameUseCase) refreshQueueLength(ctx context.Context) {
	size, err := uc.queueRepo.Size(ctx)
	if err != nil {
		uc.logger.Warn("failed to read queue length", zap.Error(err))
		return
	}
	uc.metrics.SetQueueLength(size)
}

func (uc *gameUseCase) Result(ctx context.Context, start string) (*entity.TraversalResult, error) {
	normalized, err := uc.traverser.Validate(start)
	if err != nil {
		return nil, err
	}
	return uc.traversalRepo.FindByStart(ctx, normalized)
}

func (uc *gameUseCase) Recent(ctx context.Context, limit int) ([]*entity.TraversalResult, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	results, err := uc.traversalRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list traversal results: %w", err)
	}
	return results, nil
}

func (uc *gameUseCase) Graph(ctx context.Context) (*graph.PathGraph, error) {
	g := graph.New()
	g.AddEdges(uc.graph.Edges())
	for _, n := range uc.graph.Nodes() {
		g.AddPath([]string{n})
	}
	if uc.edgeRepo == nil {
		return g, nil
	}
	edges, err := uc.edgeRepo.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load path edges: %w", err)
	}
	g.AddEdges(edges)
	return g, nil
}

func (uc *gameUseCase) TargetName() string {
	return utils.PageName(uc.traverser.Target())
}

// Summary is the one-line, human readable verdict for a result.
func Summary(result *entity.TraversalResult, targetName string) string {
	start := result.Path[0]
	switch result.Outcome {
	case entity.OutcomeReached:
		return fmt.Sprintf("You have to visit %d pages and click %d links to get to the %s Wikipedia page from the %s Wikipedia page.",
			len(result.Path), result.Hops(), targetName, start)
	case entity.OutcomeFetchFailed:
		return fmt.Sprintf("Could not finish the walk from the %s Wikipedia page: %s", start, result.FailureReason)
	default:
		return fmt.Sprintf("You found an exception! The wikipedia page of %s does not go to %s", start, targetName)
	}
}
