package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

const traversalQueueKey = "philosophy:queue"

// QueueRepoImpl provides a concrete implementation for the QueueRepository interface using Redis Lists.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a job to the left side of the Redis list (acting as a queue).
func (r *QueueRepoImpl) Push(ctx context.Context, job *entity.TraversalJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode traversal job: %w", err)
	}
	return r.client.LPush(ctx, traversalQueueKey, payload).Err()
}

// Pop removes and returns a job from the right side of the Redis list.
// RPop returns redis.Nil when the list is empty, which maps to ErrQueueEmpty.
func (r *QueueRepoImpl) Pop(ctx context.Context) (*entity.TraversalJob, error) {
	payload, err := r.client.RPop(ctx, traversalQueueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	var job entity.TraversalJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode traversal job: %w", err)
	}
	return &job, nil
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, traversalQueueKey).Result()
}
