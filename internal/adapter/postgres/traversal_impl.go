package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

// TraversalRepoImpl provides a concrete implementation for the TraversalRepository interface using PostgreSQL.
type TraversalRepoImpl struct {
	db *pgxpool.Pool
}

// NewTraversalRepo creates a new instance of TraversalRepoImpl.
func NewTraversalRepo(db *pgxpool.Pool) *TraversalRepoImpl {
	return &TraversalRepoImpl{db: db}
}

// Save stores or replaces the result for its start address.
func (r *TraversalRepoImpl) Save(ctx context.Context, result *entity.TraversalResult) error {
	query := `
		INSERT INTO traversal_results (start_url, reached, outcome, path, addresses, failure_reason, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (start_url) DO UPDATE SET
			reached = EXCLUDED.reached,
			outcome = EXCLUDED.outcome,
			path = EXCLUDED.path,
			addresses = EXCLUDED.addresses,
			failure_reason = EXCLUDED.failure_reason,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at;
	`
	_, err := r.db.Exec(ctx, query,
		result.Start,
		result.Reached,
		string(result.Outcome),
		result.Path,
		result.Addresses,
		result.FailureReason,
		result.StartedAt,
		result.FinishedAt,
	)
	return err
}

const selectColumns = `start_url, reached, outcome, path, addresses, failure_reason, started_at, finished_at`

// FindByStart retrieves the stored result for a start address.
func (r *TraversalRepoImpl) FindByStart(ctx context.Context, start string) (*entity.TraversalResult, error) {
	query := `SELECT ` + selectColumns + ` FROM traversal_results WHERE start_url = $1;`

	result, err := scanResult(r.db.QueryRow(ctx, query, start))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns the most recently finished traversals.
func (r *TraversalRepoImpl) List(ctx context.Context, limit int) ([]*entity.TraversalResult, error) {
	query := `SELECT ` + selectColumns + ` FROM traversal_results ORDER BY finished_at DESC LIMIT $1;`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*entity.TraversalResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (*entity.TraversalResult, error) {
	var result entity.TraversalResult
	var outcome string
	err := row.Scan(
		&result.Start,
		&result.Reached,
		&outcome,
		&result.Path,
		&result.Addresses,
		&result.FailureReason,
		&result.StartedAt,
		&result.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	result.Outcome = entity.Outcome(outcome)
	return &result, nil
}
