package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectColumns = "SELECT id, name, blocks, created_at, updated_at FROM documents"

func TestPostgresStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "blocks", "created_at", "updated_at"}).
		AddRow("doc-1", "Welcome", []byte(`[{"type":"title","id":"t1","content":"Hi"}]`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta(selectColumns + " WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := s.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Name)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "t1", doc.Blocks[0].ID)
	assert.Equal(t, "Hi", doc.Blocks[0].String("content"))

	mock.ExpectQuery(regexp.QuoteMeta(selectColumns + " WHERE id = $1")).
		WithArgs("doc-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "blocks", "created_at", "updated_at"}))

	_, err = s.Get(ctx, "doc-2")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorePut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	doc := sampleDoc("promo")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(doc.ID, "promo", sqlmock.AnyArg(), doc.CreatedAt, doc.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Put(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "blocks", "created_at", "updated_at"}).
		AddRow("b", "Second", []byte(`[]`), now, now).
		AddRow("a", "First", []byte(`[{"type":"spacer","id":"s"}]`), now, now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta(selectColumns + " ORDER BY updated_at DESC")).
		WillReturnRows(rows)

	docs, err := NewPostgresStore(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.NotNil(t, docs[0].Blocks)
	assert.Len(t, docs[1].Blocks, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(ctx, "doc-1"))
	assert.ErrorIs(t, s.Delete(ctx, "doc-1"), ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS documents")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
