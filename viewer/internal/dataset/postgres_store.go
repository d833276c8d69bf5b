package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore отдает объекты датасетов из таблицы eeg_objects
type PostgresStore struct {
	db       *sql.DB
	maxBytes int64
}

// NewPostgresStore оборачивает открытое подключение к БД
func NewPostgresStore(db *sql.DB, maxBytes int64) *PostgresStore {
	return &PostgresStore{
		db:       db,
		maxBytes: maxBytes,
	}
}

// NewPostgresStoreFromDSN открывает БД и проверяет подключение
func NewPostgresStoreFromDSN(ctx context.Context, dsn string, maxBytes int64) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db, maxBytes: maxBytes}, nil
}

// Close закрывает подключение к БД
func (r *PostgresStore) Close() error {
	return r.db.Close()
}

func (r *PostgresStore) Name() string {
	return "postgres:eeg_objects"
}

// EnsureSchema создает таблицу объектов, если ее нет
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS eeg_objects (
			name       TEXT PRIMARY KEY,
			content    BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create eeg_objects: %w", err)
	}
	return nil
}

func (r *PostgresStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	if r.maxBytes > 0 {
		var size int64
		err := r.db.QueryRowContext(ctx, `SELECT octet_length(content) FROM eeg_objects WHERE name = $1`, name).Scan(&size)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
			}
			return nil, fmt.Errorf("failed to stat object %s: %w", name, err)
		}
		if size > r.maxBytes {
			return nil, &ObjectTooLargeError{Name: name, Limit: r.maxBytes}
		}
	}

	var content []byte
	err := r.db.QueryRowContext(ctx, `SELECT content FROM eeg_objects WHERE name = $1`, name).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", name, err)
	}
	return content, nil
}

func (r *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM eeg_objects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan object name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PostgresStore) Put(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO eeg_objects (name, content, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, name, data); err != nil {
		return fmt.Errorf("failed to store object %s: %w", name, err)
	}
	return nil
}
