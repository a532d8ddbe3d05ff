package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santiagocaneppa/Interview-project/constants"
	"github.com/santiagocaneppa/Interview-project/internal/common"
)

func openMem(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: "file::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, DialectPostgres, DialectFor("postgresql://localhost/db"))
	assert.Equal(t, DialectSQLite, DialectFor("./ledger.db"))
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))
	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}

func TestDocumentRunLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRunRepository(openMem(t), nil)

	id, err := repo.Start(ctx, "run-1", "tabela", "/in/tabela.pdf")
	require.NoError(t, err)

	require.NoError(t, repo.Transition(ctx, id, constants.DocStateClassified, constants.TypeTable))
	require.NoError(t, repo.Transition(ctx, id, constants.DocStateExtracted, constants.TypeTable))
	require.NoError(t, repo.Finish(ctx, id, constants.DocStateMerged, 12, nil))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "tabela", got.Name)
	assert.Equal(t, constants.TypeTable, got.Type)
	assert.Equal(t, constants.DocStateMerged, got.State)
	assert.Equal(t, 12, got.RecordCount)
	assert.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.ErrorMessage)
}

func TestDocumentRunSkippedAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRunRepository(openMem(t), nil)

	a, err := repo.Start(ctx, "run-2", "a", "/in/a.pdf")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "run-2", "b", "/in/b.pdf")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "run-3", "c", "/in/c.pdf")
	require.NoError(t, err)

	msg := "classify: unrecognized classification label"
	require.NoError(t, repo.Finish(ctx, a, constants.DocStateSkipped, 0, &msg))

	list, err := repo.ListByRun(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, list, 2)

	got, err := repo.GetByID(ctx, a)
	require.NoError(t, err)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, msg, *got.ErrorMessage)
	assert.Equal(t, constants.DocStateSkipped, got.State)
}

func TestDocumentRunErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRunRepository(openMem(t), nil)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.Transition(ctx, uuid.New(), constants.DocStateClassified, constants.TypeImage)
	assert.ErrorIs(t, err, common.ErrNotFound)

	id, err := repo.Start(ctx, "run", "x", "/in/x.pdf")
	require.NoError(t, err)
	err = repo.Finish(ctx, id, constants.DocStateNormalized, 0, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
