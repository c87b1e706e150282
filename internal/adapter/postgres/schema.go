package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS traversal_results (
	id             BIGSERIAL PRIMARY KEY,
	start_url      TEXT NOT NULL UNIQUE,
	reached        BOOLEAN NOT NULL,
	outcome        TEXT NOT NULL,
	path           TEXT[] NOT NULL,
	addresses      TEXT[] NOT NULL,
	failure_reason TEXT NOT NULL DEFAULT '',
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS traversal_results_finished_at_idx ON traversal_results (finished_at DESC);

CREATE TABLE IF NOT EXISTS path_edges (
	from_page  TEXT NOT NULL,
	to_page    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (from_page, to_page)
);
`

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
