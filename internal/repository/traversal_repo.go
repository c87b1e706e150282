package repository

import (
	"context"
	"errors"

	"github.com/user/philosophy-walker/internal/entity"
)

var ErrNotFound = errors.New("not found")

// TraversalRepository defines the interface for storing and retrieving traversal results.
type TraversalRepository interface {
	// Save stores the result for its start address. An existing result is replaced.
	Save(ctx context.Context, result *entity.TraversalResult) error
	// FindByStart retrieves the latest result for a start address, ErrNotFound if there is none.
	FindByStart(ctx context.Context, start string) (*entity.TraversalResult, error)
	// List returns the most recent results, newest first.
	List(ctx context.Context, limit int) ([]*entity.TraversalResult, error)
}
