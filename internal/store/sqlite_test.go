package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/form990-cli/internal/form990"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveFiling(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	f, rows := testFiling()

	run, err := st.SaveFiling(ctx, f, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Rows)

	payloads, err := st.RowPayloads(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.JSONEq(t,
		`{"person":"John Smith","bonus_org":25000,"total_contrib":1000000,"ein":"123456789","tax_year":2015,"object_id":"201711109349301001"}`,
		string(payloads[0]))
	assert.Contains(t, string(payloads[1]), `"bonus_org":null`)

	runs, err := st.ListRuns(ctx, f.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "990", runs[0].Form)
	assert.Equal(t, 2, runs[0].People)
}

func TestSQLite_SaveFiling_ReplacesRows(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	f, rows := testFiling()

	_, err := st.SaveFiling(ctx, f, rows)
	require.NoError(t, err)

	f.People = f.People[:1]
	_, err = st.SaveFiling(ctx, f, f.Flatten(form990.FlattenOptions{}))
	require.NoError(t, err)

	payloads, err := st.RowPayloads(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, payloads, 1)

	runs, err := st.ListRuns(ctx, f.ID, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLite_ListRuns_Unknown(t *testing.T) {
	st := newTestSQLiteStore(t)
	runs, err := st.ListRuns(context.Background(), "nope", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
