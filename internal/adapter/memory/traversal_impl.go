package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

// TraversalRepoImpl stores traversal results in a map keyed by start address.
type TraversalRepoImpl struct {
	mu      sync.RWMutex
	results map[string]*entity.TraversalResult
}

func NewTraversalRepo() *TraversalRepoImpl {
	return &TraversalRepoImpl{results: make(map[string]*entity.TraversalResult)}
}

func (r *TraversalRepoImpl) Save(ctx context.Context, result *entity.TraversalResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.Start] = result
	return nil
}

func (r *TraversalRepoImpl) FindByStart(ctx context.Context, start string) (*entity.TraversalResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[start]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return result, nil
}

func (r *TraversalRepoImpl) List(ctx context.Context, limit int) ([]*entity.TraversalResult, error) {
	r.mu.RLock()
	results := make([]*entity.TraversalResult, 0, len(r.results))
	for _, result := range r.results {
		results = append(results, result)
	}
	r.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinishedAt.Equal(results[j].FinishedAt) {
			return results[i].Start < results[j].Start
		}
		return results[i].FinishedAt.After(results[j].FinishedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
