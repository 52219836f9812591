package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweepdev/sweep/internal/lockmgr"
	"github.com/sweepdev/sweep/internal/storage/sqlite"
	"github.com/sweepdev/sweep/internal/syncer"
	"github.com/sweepdev/sweep/internal/types"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(context.Background(), t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func seed(t *testing.T, store *sqlite.Store) {
	t.Helper()
	batch := []syncer.RemoteFinding{
		{Rule: "java:S2095", Severity: "MAJOR", Type: "BUG", Path: "FileA.java", Line: 42, Message: "Close this resource"},
		{Rule: "java:S2095", Severity: "MAJOR", Type: "BUG", Path: "FileB.java", Line: 7, Message: "Close this resource"},
		{Rule: "java:S2699", Severity: "MINOR", Type: "CODE_SMELL", Path: "TestA.java", Line: 10, Message: "Add an assertion"},
	}
	_, err := syncer.Reconcile(context.Background(), store, batch, time.Now())
	require.NoError(t, err)
}

func row(s *Summary, rule string) *RuleRow {
	for i := range s.Rows {
		if s.Rows[i].Rule == rule {
			return &s.Rows[i]
		}
	}
	return nil
}

func TestCollectMatrix(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seed(t, store)

	summary, err := Collect(ctx, store, false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)

	s2095 := row(summary, "java:S2095")
	require.NotNil(t, s2095)
	assert.Equal(t, 2, s2095.Total)
	assert.Equal(t, 2, s2095.Cells[types.SeverityMajor].Count)

	// Severities ordered most severe first.
	require.Len(t, summary.Severities, 2)
	assert.Equal(t, types.SeverityMajor, summary.Severities[0])
	assert.Equal(t, types.SeverityMinor, summary.Severities[1])
}

func TestCollectResolvedSubcounts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seed(t, store)

	_, err := lockmgr.Lock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h1", time.Now())
	require.NoError(t, err)
	rres, err := lockmgr.Resolve(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h1", time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, rres.Resolved)

	// Default view: resolved findings excluded entirely.
	summary, err := Collect(ctx, store, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Nil(t, row(summary, "java:S2095"))

	// Resolved view: "S2095: 2 (2 resolved)".
	summary, err = Collect(ctx, store, true)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.TotalResolved)

	s2095 := row(summary, "java:S2095")
	require.NotNil(t, s2095)
	assert.Equal(t, 2, s2095.Total)
	assert.Equal(t, 2, s2095.Resolved)
}

func TestCollectEmptyStore(t *testing.T) {
	store := newStore(t)
	summary, err := Collect(context.Background(), store, false)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Rows)
}
