// Package postgres exports the final state of every account at the end of
// a run into a PostgreSQL table. It is a one-shot snapshot, not a
// durability or journaling layer: the engine itself stays purely
// in-memory, and this package only ever runs once processing has
// finished.
package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ledger-engine/internal/csvfeed"
	"ledger-engine/internal/domain/ledger"
)

// subUnitScale mirrors csvfeed's sub-unit scale: the engine's smallest
// unit represents four fractional decimal digits.
const subUnitScale = 4

func formatNumeric(b ledger.Balance) string {
	return decimal.New(int64(b), -subUnitScale).StringFixed(subUnitScale)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ledger_accounts (
	run_id      text        NOT NULL,
	client_id   integer     NOT NULL,
	available   numeric(20,4) NOT NULL,
	held        numeric(20,4) NOT NULL,
	total       numeric(20,4) NOT NULL,
	locked      boolean     NOT NULL,
	exported_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, client_id)
)`

const upsertSQL = `
INSERT INTO ledger_accounts (run_id, client_id, available, held, total, locked)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, client_id) DO UPDATE SET
	available = EXCLUDED.available,
	held = EXCLUDED.held,
	total = EXCLUDED.total,
	locked = EXCLUDED.locked,
	exported_at = now()
`

// Exporter writes account snapshots to a PostgreSQL database.
type Exporter struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies connectivity.
func Connect(ctx context.Context, cfg *Config) (*Exporter, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("snapshot/postgres: failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("snapshot/postgres: failed to ping database: %w", err)
	}
	return &Exporter{pool: pool}, nil
}

// Close releases the connection pool.
func (e *Exporter) Close() {
	e.pool.Close()
}

// EnsureSchema creates the ledger_accounts table if it does not exist.
func (e *Exporter) EnsureSchema(ctx context.Context) error {
	if _, err := e.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("snapshot/postgres: failed to create schema: %w", err)
	}
	return nil
}

// Export upserts one row per account for the given runID, inside a single
// transaction so a reader never observes a partially written snapshot.
func (e *Exporter) Export(ctx context.Context, runID string, rows []csvfeed.OutputRow) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot/postgres: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		_, err := tx.Exec(ctx, upsertSQL,
			runID,
			row.Client,
			formatNumeric(row.Available),
			formatNumeric(row.Held),
			formatNumeric(row.Total),
			row.Locked,
		)
		if err != nil {
			return fmt.Errorf("snapshot/postgres: failed to upsert client %d: %w", row.Client, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot/postgres: failed to commit: %w", err)
	}

	log.Printf("snapshot/postgres: exported %d accounts for run %s", len(rows), runID)
	return nil
}
