package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/livetemplate/mailcraft"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	blocks     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps documents in a SQLite file. Blocks are stored as JSON.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (and if needed creates) the database at dbPath.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./mailcraft.db"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: failed to connect: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*mailcraft.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, blocks, created_at, updated_at FROM documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list failed: %w", err)
	}
	defer rows.Close()

	docs := []*mailcraft.Document{}
	for rows.Next() {
		doc, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*mailcraft.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, blocks, created_at, updated_at FROM documents WHERE id = ?", id)
	doc, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %q: %w", id, ErrDocumentNotFound)
	}
	return doc, err
}

func (s *SQLiteStore) Put(ctx context.Context, doc *mailcraft.Document) error {
	blocks, err := encodeBlocks(doc.Blocks)
	if err != nil {
		return fmt.Errorf("sqlite store: encode blocks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO documents (id, name, blocks, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name, blocks = excluded.blocks, updated_at = excluded.updated_at`,
		doc.ID, doc.Name, string(blocks),
		doc.CreatedAt.UTC().Format(time.RFC3339Nano), doc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite store: put %q: %w", doc.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite store: delete %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %q: %w", id, ErrDocumentNotFound)
	}
	return nil
}

// Close releases the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*mailcraft.Document, error) {
	var (
		doc                  mailcraft.Document
		blocks               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&doc.ID, &doc.Name, &blocks, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if doc.Blocks, err = decodeBlocks([]byte(blocks)); err != nil {
		return nil, fmt.Errorf("sqlite store: document %q: %w", doc.ID, err)
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("sqlite store: document %q created_at: %w", doc.ID, err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("sqlite store: document %q updated_at: %w", doc.ID, err)
	}
	return &doc, nil
}
