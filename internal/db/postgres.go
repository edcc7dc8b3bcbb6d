// Package db persists completed coin-selection runs to PostgreSQL via pgx,
// following the connection-pool-and-InitSchema pattern the wider engine
// uses for its own storage.
package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/coinselect-engine/internal/selectservice"
	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

// PostgresStore is a pgx-backed selectservice.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ selectservice.Store = (*PostgresStore)(nil)

// Connect opens a connection pool against connStr and verifies it with a
// ping.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for selection-run storage")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes internal/db/schema.sql.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Selection-run schema initialized")
	return nil
}

// SaveSelectionRun persists one completed selection run.
func (s *PostgresStore) SaveSelectionRun(ctx context.Context, run selectservice.Result, candidateCount int, targetValue uint64) error {
	const insertSQL = `
		INSERT INTO selection_runs
			(run_id, ran_at, candidate_count, target_value, selected_inputs, change_value, waste)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, insertSQL,
		run.RunID,
		run.RanAt,
		candidateCount,
		int64(targetValue),
		run.SelectedInputs,
		run.Change,
		float64(run.Waste),
	)
	if err != nil {
		return fmt.Errorf("failed to insert selection_runs: %v", err)
	}
	return nil
}

// RecentRuns returns the most recently completed selection runs, newest
// first, for dashboard/audit consumption.
func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]selectservice.Result, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	const querySQL = `
		SELECT run_id, ran_at, selected_inputs, change_value, waste
		FROM selection_runs
		ORDER BY ran_at DESC
		LIMIT $1;
	`
	rows, err := s.pool.Query(ctx, querySQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []selectservice.Result
	for rows.Next() {
		var r selectservice.Result
		var waste float64
		if err := rows.Scan(&r.RunID, &r.RanAt, &r.SelectedInputs, &r.Change, &waste); err != nil {
			return nil, err
		}
		r.Waste = coinselect.WasteMetric(float32(waste))
		runs = append(runs, r)
	}
	if runs == nil {
		runs = []selectservice.Result{}
	}
	return runs, nil
}
