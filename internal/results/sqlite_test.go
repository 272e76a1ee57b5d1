package results

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicaldss/trialscreen/internal/screening"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "screening.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

func TestStoreInsertAndRows(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.InsertRow(ctx, testRow("p1", "a", screening.Eligible)))
	require.NoError(t, store.InsertRow(ctx, testRow("p2", "b", screening.Uncertain)))

	rows, err := store.Rows(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].PatientID)
	assert.Equal(t, screening.Eligible, rows[0].Decision)

	filtered, err := store.Rows(ctx, "b")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "p2", filtered[0].PatientID)
}

func TestStoreCountByDecision(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.InsertRow(ctx, testRow("p1", "a", screening.Eligible)))
	require.NoError(t, store.InsertRow(ctx, testRow("p2", "a", screening.Eligible)))
	require.NoError(t, store.InsertRow(ctx, testRow("p3", "a", screening.Ineligible)))

	counts, err := store.CountByDecision(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[screening.Eligible])
	assert.Equal(t, 1, counts[screening.Ineligible])
	assert.Equal(t, 0, counts[screening.Uncertain])
}

func TestStoreClearTables(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.InsertRow(ctx, testRow("p1", "a", screening.Eligible)))
	require.NoError(t, store.ClearTables(ctx))

	rows, err := store.Rows(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
