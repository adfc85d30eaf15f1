package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
)

// ActionsWriter journals executed order actions to a parquet file.
// Every write re-exports the table so the file on disk is always complete.
type ActionsWriter struct {
	db         *sql.DB
	outputPath string
	mu         sync.Mutex
}

// NewActionsWriter creates a new ActionsWriter.
// outputPath is the full path to the parquet file.
func NewActionsWriter(outputPath string) *ActionsWriter {
	return &ActionsWriter{
		db:         nil,
		outputPath: outputPath,
		mu:         sync.Mutex{},
	}
}

// Initialize sets up the actions table in an in-memory DuckDB and loads any
// rows already present in the parquet file.
func (w *ActionsWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	w.db = db

	// sizes and prices stay decimal strings so the journal matches what was sent
	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			cycle_id TEXT,
			sequence INTEGER,
			symbol TEXT,
			kind TEXT,
			reason TEXT,
			side TEXT,
			order_type TEXT,
			size TEXT,
			price TEXT,
			client_id TEXT,
			order_id TEXT,
			status TEXT,
			error TEXT,
			timestamp TIMESTAMP,
			PRIMARY KEY (cycle_id, symbol, sequence)
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to create actions table: %w", err)
	}

	if _, err := os.Stat(w.outputPath); err == nil {
		_, err = w.db.Exec(fmt.Sprintf(`
			INSERT INTO actions
			SELECT * FROM read_parquet('%s')
			ON CONFLICT DO NOTHING
		`, w.outputPath))
		if err != nil {
			// unreadable journal, start fresh
			_ = err
		}
	}

	return nil
}

// Write persists one record and exports to parquet.
func (w *ActionsWriter) Write(record types.ActionRecord) error {
	return w.WriteBatch([]types.ActionRecord{record})
}

// WriteBatch persists records in one transaction and exports to parquet once.
// A record with the same cycle, symbol and sequence replaces the earlier row.
func (w *ActionsWriter) WriteBatch(records []types.ActionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, r := range records {
		_, err := tx.Exec(`
			INSERT INTO actions (cycle_id, sequence, symbol, kind, reason, side, order_type,
				size, price, client_id, order_id, status, error, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (cycle_id, symbol, sequence) DO UPDATE SET
				order_id = excluded.order_id,
				status = excluded.status,
				error = excluded.error
		`, r.CycleID, r.Sequence, r.Symbol, string(r.Kind), string(r.Reason), string(r.Side),
			string(r.OrderType), r.Size, r.Price, r.ClientID, r.OrderID, string(r.Status),
			r.Error, r.Timestamp)
		if err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("failed to insert action: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit actions: %w", err)
	}

	if err := w.exportToParquet(); err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

// Flush forces an export to parquet.
func (w *ActionsWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	return w.exportToParquet()
}

// GetOutputPath returns the parquet file path.
func (w *ActionsWriter) GetOutputPath() string {
	return w.outputPath
}

// Close releases database resources.
func (w *ActionsWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}

		w.db = nil
	}

	return nil
}

// exportToParquet exports the current data to the parquet file.
//
//nolint:funcorder // helper method used by WriteBatch and Flush
func (w *ActionsWriter) exportToParquet() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM actions ORDER BY timestamp ASC, symbol ASC, sequence ASC)
		TO '%s' (FORMAT PARQUET)
	`, w.outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

// GetActionCount returns the number of actions stored.
func (w *ActionsWriter) GetActionCount() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, fmt.Errorf("writer not initialized")
	}

	var count int

	err := w.db.QueryRow("SELECT COUNT(*) FROM actions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}

	return count, nil
}
