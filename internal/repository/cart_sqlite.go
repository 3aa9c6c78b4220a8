package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteCartRepository implements PartitionRepository using SQLite. The
// default store on a single device, mirroring browser localStorage: one raw
// JSON document per scope key, last write wins.
type SQLiteCartRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteCartRepository creates a new SQLite cart partition repository.
// dbPath is the path to the SQLite database file (e.g., "./data/cart.db").
func NewSQLiteCartRepository(dbPath string) (*SQLiteCartRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createCartTable(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteCartRepository{db: db}, nil
}

func createCartTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS cart_partitions (
		scope TEXT PRIMARY KEY,
		lines_json TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	_, err := db.Exec(query)
	return err
}

// Load retrieves the raw JSON list for a scope, or nil when absent.
func (r *SQLiteCartRepository) Load(ctx context.Context, scope string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rawJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT lines_json FROM cart_partitions WHERE scope = ?`, scope).Scan(&rawJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart partition: %w", err)
	}

	return []byte(rawJSON), nil
}

// Save overwrites the raw JSON list for a scope.
func (r *SQLiteCartRepository) Save(ctx context.Context, scope string, rawJSON []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO cart_partitions (scope, lines_json, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(scope) DO UPDATE SET
			lines_json = excluded.lines_json,
			updated_at = datetime('now')`

	if _, err := r.db.ExecContext(ctx, query, scope, string(rawJSON)); err != nil {
		return fmt.Errorf("failed to save cart partition: %w", err)
	}
	return nil
}

// Delete removes a scope's partition entirely.
func (r *SQLiteCartRepository) Delete(ctx context.Context, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_partitions WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("failed to delete cart partition: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteCartRepository) Close() error {
	return r.db.Close()
}
