// Package sqlite stores traversal results and path edges in a local SQLite
// file so repeated CLI runs build on each other's graph.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/user/philosophy-walker/internal/entity"
	"github.com/user/philosophy-walker/internal/repository"
)

// Store implements repository.TraversalRepository and
// repository.GraphEdgeRepository on one SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database file at path and creates its tables.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS traversal_results (
		start_url      TEXT PRIMARY KEY,
		reached        INTEGER NOT NULL,
		outcome        TEXT NOT NULL,
		path           TEXT NOT NULL,
		addresses      TEXT NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		started_at     DATETIME NOT NULL,
		finished_at    DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS path_edges (
		from_page TEXT NOT NULL,
		to_page   TEXT NOT NULL,
		PRIMARY KEY (from_page, to_page)
	);
	`)
	return err
}

func (s *Store) Save(ctx context.Context, result *entity.TraversalResult) error {
	pathJSON, err := json.Marshal(result.Path)
	if err != nil {
		return err
	}
	addressesJSON, err := json.Marshal(result.Addresses)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO traversal_results (start_url, reached, outcome, path, addresses, failure_reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (start_url) DO UPDATE SET
			reached = excluded.reached,
			outcome = excluded.outcome,
			path = excluded.path,
			addresses = excluded.addresses,
			failure_reason = excluded.failure_reason,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at`,
		result.Start,
		result.Reached,
		string(result.Outcome),
		string(pathJSON),
		string(addressesJSON),
		result.FailureReason,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save traversal from %s: %w", result.Start, err)
	}
	return nil
}

const selectColumns = `start_url, reached, outcome, path, addresses, failure_reason, started_at, finished_at`

func (s *Store) FindByStart(ctx context.Context, start string) (*entity.TraversalResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM traversal_results WHERE start_url = ?`, start)
	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*entity.TraversalResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM traversal_results ORDER BY finished_at DESC LIMIT ?`, limit)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*entity.TraversalResult, error) {
	var (
		result                  entity.TraversalResult
		outcome                 string
		pathJSON, addressesJSON string
	)
	err := row.Scan(
		&result.Start,
		&result.Reached,
		&outcome,
		&pathJSON,
		&addressesJSON,
		&result.FailureReason,
		&result.StartedAt,
		&result.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(pathJSON), &result.Path); err != nil {
		return nil, fmt.Errorf("failed to decode path: %w", err)
	}
	if err := json.Unmarshal([]byte(addressesJSON), &result.Addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %w", err)
	}
	result.Outcome = entity.Outcome(outcome)
	return &result, nil
}

func (s *Store) AddEdges(ctx context.Context, edges []entity.GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO path_edges (from_page, to_page) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.From, e.To); err != nil {
			return fmt.Errorf("failed to save edge %s - %s: %w", e.From, e.To, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListEdges(ctx context.Context) ([]entity.GraphEdge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_page, to_page FROM path_edges ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entity.GraphEdge
	for rows.Next() {
		var e entity.GraphEdge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
