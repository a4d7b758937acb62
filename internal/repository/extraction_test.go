package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpcarrion/factura-ocr/constants"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	db, err := Open(context.Background(), Config{
		DSN: filepath.Join(t.TempDir(), "audit.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStartAndFinishSuccess(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := NewExtractionRepository(db, logger)
	ctx := context.Background()

	id, err := repo.Start(ctx, "factura.pdf")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	err = repo.FinishSuccess(ctx, id, FinishParams{
		Method:        "pdf-ocr",
		Pages:         2,
		Text:          "VALOR TOTAL: 45.67",
		PayloadJSON:   []byte(`{"factura":"001-002-000000123"}`),
		NumeroFactura: "001-002-000000123",
		Cliente:       "JUAN PEREZ",
		ValorTotal:    "45.67",
	})
	require.NoError(t, err)

	jobs, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	j := jobs[0]
	assert.Equal(t, id, j.ID)
	assert.Equal(t, "factura.pdf", j.Filename)
	assert.Equal(t, constants.JobStatusExtractOK, j.Status)
	assert.Equal(t, "pdf-ocr", j.Method)
	assert.Equal(t, 2, j.Pages)
	assert.Equal(t, "JUAN PEREZ", j.Cliente)
	assert.Equal(t, "45.67", j.ValorTotal)
	require.NotNil(t, j.FinishedAt)
	assert.False(t, j.CreatedAt.IsZero())
}

func TestFinishFailure(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := NewExtractionRepository(db, logger)
	ctx := context.Background()

	id, err := repo.Start(ctx, "broken.pdf")
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, id, "no text could be extracted"))

	jobs, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.JobStatusFailed, jobs[0].Status)
	assert.Equal(t, "no text could be extracted", jobs[0].ErrorMessage)
}

func TestListWindowFiltering(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := NewExtractionRepository(db, logger)
	ctx := context.Background()

	_, err := repo.Start(ctx, "a.pdf")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "b.pdf")
	require.NoError(t, err)

	// a window entirely in the past matches nothing
	past := time.Now().Add(-48 * time.Hour)
	pastEnd := time.Now().Add(-24 * time.Hour)
	jobs, err := repo.List(ctx, &past, &pastEnd)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	// an open-ended window from the past matches both, oldest first
	jobs, err = repo.List(ctx, &past, nil)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a.pdf", jobs[0].Filename)
	assert.Equal(t, "b.pdf", jobs[1].Filename)
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: "sqlite"}
	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b = ?",
		sqlite.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	pg := &DB{driver: "pgx"}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2",
		pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
}
