package lockmgr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// seedScenario loads the canonical three-finding batch: S2095 on
// FileA.java and FileB.java, S2699 on TestA.java.
func seedScenario(t *testing.T, store *sqlite.Store) {
	t.Helper()
	batch := []syncer.RemoteFinding{
		{Rule: "java:S2095", Severity: "MAJOR", Type: "BUG", Path: "FileA.java", Line: 42, Message: "Close this resource"},
		{Rule: "java:S2095", Severity: "MAJOR", Type: "BUG", Path: "FileB.java", Line: 7, Message: "Close this resource"},
		{Rule: "java:S2699", Severity: "MINOR", Type: "CODE_SMELL", Path: "TestA.java", Line: 10, Message: "Add an assertion"},
	}
	result, err := syncer.Reconcile(context.Background(), store, batch, time.Now())
	require.NoError(t, err)
	require.Equal(t, 3, result.Added)
}

func TestLockClaimsGroup(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	spec := types.FilterSpec{Rule: "java:S2095"}
	result, err := Lock(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Claimed)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, "rule=java:S2095", result.Group)

	// The unmatched S2699 finding stays unlocked.
	locks, err := store.ActiveLocks(ctx)
	require.NoError(t, err)
	assert.Len(t, locks, 2)
}

func TestLockPartialClaim(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	spec := types.FilterSpec{Rule: "java:S2095"}
	_, err := Lock(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)

	// A second holder over the same group gets all conflicts, no claims,
	// and no previously-held record changes holder.
	result, err := Lock(ctx, store, spec, "h2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Claimed)
	require.Len(t, result.Conflicts, 2)
	for _, c := range result.Conflicts {
		assert.Equal(t, "h1", c.Holder)
	}

	// Wider group: h2 picks up only the remainder.
	result, err = Lock(ctx, store, types.FilterSpec{}, "h2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Claimed)
	assert.Len(t, result.Conflicts, 2)
}

func TestLockIdempotentForSameHolder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	spec := types.FilterSpec{Rule: "java:S2095"}
	_, err := Lock(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)

	// A retried lock call (crash recovery) reports the full group as
	// claimed without conflicts.
	result, err := Lock(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Claimed)
	assert.Empty(t, result.Conflicts)
}

func TestUnlockHolderDiscipline(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	_, err := Lock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h1", time.Now())
	require.NoError(t, err)

	// h2 unlocking the group touches nothing.
	released, err := Unlock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h2")
	require.NoError(t, err)
	assert.Equal(t, 0, released)

	released, err = Unlock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h1")
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	locks, err := store.ActiveLocks(ctx)
	require.NoError(t, err)
	assert.Empty(t, locks)
}

func TestUnlockNoMatchIsZeroNotError(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	released, err := Unlock(ctx, store, types.FilterSpec{Rule: "java:S9999"}, "h1")
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestResolveClearsLockAndCountsOwnership(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	spec := types.FilterSpec{Rule: "java:S2095"}
	_, err := Lock(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)

	result, err := Resolve(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Resolved)
	assert.Equal(t, 0, result.Unowned)

	resolved, err := store.SearchFindings(ctx, types.FilterSpec{Rule: "java:S2095", IncludeResolved: true})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	for _, f := range resolved {
		assert.True(t, f.Resolved)
		assert.Nil(t, f.Lock)
	}
}

func TestResolveWithoutLockIsUnowned(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	result, err := Resolve(ctx, store, types.FilterSpec{Rule: "java:S2699"}, "h1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)
	assert.Equal(t, 1, result.Unowned)
}

func TestResolvedFindingsNotLockableByDefault(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	spec := types.FilterSpec{Rule: "java:S2699"}
	_, err := Resolve(ctx, store, spec, "h1", time.Now())
	require.NoError(t, err)

	// Default lock target set excludes resolved findings.
	result, err := Lock(ctx, store, spec, "h2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Claimed)
	assert.Empty(t, result.Conflicts)

	// Re-admitting them is an explicit decision (reverted remediation).
	spec.IncludeResolved = true
	result, err = Lock(ctx, store, spec, "h2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Claimed)
}

func TestStaleReclamationScenario(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedScenario(t, store)

	cutoff := time.Now()
	_, err := Lock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "crashed", cutoff.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = Lock(ctx, store, types.FilterSpec{Rule: "java:S2699"}, "alive", cutoff.Add(time.Minute))
	require.NoError(t, err)

	n, err := ClearOlderThan(ctx, store, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	locks, err := store.ActiveLocks(ctx)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, "alive", locks[0].Lock.Holder)

	// The reclaimed group is claimable again.
	result, err := Lock(ctx, store, types.FilterSpec{Rule: "java:S2095"}, "h2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Claimed)
}
