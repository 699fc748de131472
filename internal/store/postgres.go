package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/livetemplate/mailcraft"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	blocks     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps documents in PostgreSQL with blocks in a JSONB column.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore uses an already open database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects to dsn and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg store: database connection required (set storage.dsn)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pg store: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pg store: failed to connect: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the documents table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("pg store: failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*mailcraft.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, blocks, created_at, updated_at FROM documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("pg store: list failed: %w", err)
	}
	defer rows.Close()

	docs := []*mailcraft.Document{}
	for rows.Next() {
		doc, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg store: row iteration error: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, blocks, created_at, updated_at FROM documents WHERE id = $1", id)
	doc, err := scanPostgres(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", id, ErrDocumentNotFound)
	}
	return doc, err
}

func (s *PostgresStore) Put(ctx context.Context, doc *mailcraft.Document) error {
	blocks, err := encodeBlocks(doc.Blocks)
	if err != nil {
		return fmt.Errorf("pg store: encode blocks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO documents (id, name, blocks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, blocks = EXCLUDED.blocks, updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.Name, string(blocks), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pg store: put %q: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("pg store: delete %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrDocumentNotFound)
	}
	return nil
}

// Close releases the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanPostgres(row scanner) (*mailcraft.Document, error) {
	var (
		doc    mailcraft.Document
		blocks []byte
	)
	if err := row.Scan(&doc.ID, &doc.Name, &blocks, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if doc.Blocks, err = decodeBlocks(blocks); err != nil {
		return nil, fmt.Errorf("pg store: document %q: %w", doc.ID, err)
	}
	return &doc, nil
}
