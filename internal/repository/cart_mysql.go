package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLCartRepository implements PartitionRepository using MySQL, for shared
// agent terminals where several client processes on one counter need the
// same partitions.
type MySQLCartRepository struct {
	db *sql.DB
}

// NewMySQLCartRepository opens a MySQL-backed cart partition repository.
func NewMySQLCartRepository(dsn string) (*MySQLCartRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS cart_partitions (
		scope VARCHAR(191) PRIMARY KEY,
		lines_json MEDIUMTEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &MySQLCartRepository{db: db}, nil
}

// Load retrieves the raw JSON list for a scope, or nil when absent.
func (r *MySQLCartRepository) Load(ctx context.Context, scope string) ([]byte, error) {
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
func (r *MySQLCartRepository) Save(ctx context.Context, scope string, rawJSON []byte) error {
	query := `
		INSERT INTO cart_partitions (scope, lines_json, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			lines_json = VALUES(lines_json),
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, scope, string(rawJSON)); err != nil {
		return fmt.Errorf("failed to save cart partition: %w", err)
	}
	return nil
}

// Delete removes a scope's partition entirely.
func (r *MySQLCartRepository) Delete(ctx context.Context, scope string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_partitions WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("failed to delete cart partition: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *MySQLCartRepository) Close() error {
	return r.db.Close()
}
