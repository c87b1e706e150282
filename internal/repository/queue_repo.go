package repository

import (
	"context"
	"errors"

	"github.com/user/philosophy-walker/internal/entity"
)

var ErrQueueEmpty = errors.New("queue is empty")

// QueueRepository defines the interface for a FIFO queue of traversal jobs.
type QueueRepository interface {
	// Push adds a job to the end of the queue.
	Push(ctx context.Context, job *entity.TraversalJob) error
	// Pop removes and returns the job at the front of the queue, ErrQueueEmpty if there is none.
	Pop(ctx context.Context) (*entity.TraversalJob, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
